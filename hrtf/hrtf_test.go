package hrtf

import (
	"reflect"
	"testing"
)

func TestLookupDirectionSymmetry(t *testing.T) {
	table := New()

	cases := []struct{ elev, az float64 }{
		{0, 30}, {0, 90}, {10, 45}, {-30, 120}, {90, 0}, {40, 170},
	}
	for _, c := range cases {
		pos := table.Lookup(c.elev, c.az)
		neg := table.Lookup(c.elev, -c.az)

		if !reflect.DeepEqual(neg.Left, pos.Right) {
			t.Errorf("elev=%v az=%v: lookup(-az).left != lookup(az).right", c.elev, c.az)
		}
		if !reflect.DeepEqual(neg.Right, pos.Left) {
			t.Errorf("elev=%v az=%v: lookup(-az).right != lookup(az).left", c.elev, c.az)
		}
	}
}

func TestLookupFrontIsBalanced(t *testing.T) {
	table := New()
	resp := table.Lookup(0, 0)
	if !reflect.DeepEqual(resp.Left, resp.Right) {
		t.Fatalf("straight-ahead lookup should be ear-symmetric, got left=%v right=%v", resp.Left, resp.Right)
	}
}

func TestLookupSnapsToNearestElevationRow(t *testing.T) {
	table := New()
	// 95 degrees should snap to the 90-degree row, same as exactly 90.
	a := table.Lookup(90, 10)
	b := table.Lookup(95, 10)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("lookup(95,...) did not snap to the same row as lookup(90,...)")
	}
}

func TestIRLengthAndSampleRate(t *testing.T) {
	table := New()
	if table.SampleRate() != NativeSampleRate {
		t.Fatalf("SampleRate() = %v, want %v", table.SampleRate(), NativeSampleRate)
	}
	if table.IRLen() != IRLen {
		t.Fatalf("IRLen() = %d, want %d", table.IRLen(), IRLen)
	}
	resp := table.Lookup(0, 45)
	if len(resp.Left) != IRLen || len(resp.Right) != IRLen {
		t.Fatalf("IR length = %d/%d, want %d", len(resp.Left), len(resp.Right), IRLen)
	}
}

func TestResampleChangesRateAndLength(t *testing.T) {
	table := New()
	resampled, err := table.Resample(48000)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	if resampled.SampleRate() != 48000 {
		t.Fatalf("SampleRate() = %v, want 48000", resampled.SampleRate())
	}

	resp := resampled.Lookup(0, 45)
	wantLenF := float64(IRLen) * 48000 / NativeSampleRate
	wantLen := int(wantLenF)
	if d := resp.Left == nil; d {
		t.Fatal("resampled impulse response is nil")
	}
	// Allow the polyphase resampler's exact output length to land within a
	// few samples of the ideal ratio.
	if got := len(resp.Left); got < wantLen-8 || got > wantLen+8 {
		t.Fatalf("resampled IR length = %d, want near %d", got, wantLen)
	}
}

func TestLookupKeyStableAcrossRepeatedCalls(t *testing.T) {
	table := New()
	k1, _ := table.LookupKey(10, 37)
	k2, _ := table.LookupKey(10, 37)
	if k1 != k2 {
		t.Fatalf("LookupKey not stable: %+v != %+v", k1, k2)
	}
}

func TestResampleNoOpWhenRateMatches(t *testing.T) {
	table := New()
	same, err := table.Resample(NativeSampleRate)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	if same != table {
		t.Fatalf("Resample at native rate should return the same table")
	}
}
