package object

import (
	"testing"

	"github.com/netivemedia/clunk-go/hrtf"
	"github.com/netivemedia/clunk-go/pcm"
	"github.com/netivemedia/clunk-go/source"
)

func newTestSource(t *testing.T, table *hrtf.Table, loop bool) *source.Source {
	t.Helper()
	data := make([]byte, 4410*2)
	sample, err := pcm.NewSample(data, pcm.Format{SampleRate: 44100, Channels: 1, BitsPerSample: 16})
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	opts := []source.Option{}
	if loop {
		opts = append(opts, source.WithLoop(true))
	}
	src, err := source.NewFromSample(sample, table, 256, 44100, opts...)
	if err != nil {
		t.Fatalf("NewFromSample: %v", err)
	}
	return src
}

func TestPlayAndPlaying(t *testing.T) {
	table := hrtf.New()
	obj := New()
	if obj.Playing("a") {
		t.Fatal("Playing should be false before any Play call")
	}
	obj.Play("a", newTestSource(t, table, false))
	if !obj.Playing("a") {
		t.Fatal("Playing should be true after Play")
	}
	if obj.Playing("b") {
		t.Fatal("Playing should be false for an unused name")
	}
}

func TestActiveReflectsAnchoredSources(t *testing.T) {
	table := hrtf.New()
	obj := New()
	if obj.Active() {
		t.Fatal("a fresh object should not be active")
	}
	obj.Play("a", newTestSource(t, table, false))
	if !obj.Active() {
		t.Fatal("object with a playing source should be active")
	}
}

func TestCancelImmediateRemovesSource(t *testing.T) {
	table := hrtf.New()
	obj := New()
	obj.Play("a", newTestSource(t, table, true))
	obj.Cancel("a", 0)
	if obj.Playing("a") {
		t.Fatal("Cancel(name, 0) should remove the source immediately")
	}
	if obj.Active() {
		t.Fatal("object should no longer be active after cancelling its only source")
	}
}

func TestCancelWithFadeoutIgnoresNonLooping(t *testing.T) {
	table := hrtf.New()
	obj := New()
	nonLooping := newTestSource(t, table, false)
	obj.Play("a", nonLooping)
	obj.Cancel("a", 0.5)

	if nonLooping.State() != source.Playing {
		t.Errorf("cancel(name, tau>0) should leave a non-looping source alone, got state=%v", nonLooping.State())
	}
	if !obj.Playing("a") {
		t.Fatal("a non-looping source ignored by cancel should still be tracked")
	}
}

func TestCancelWithFadeoutFadesLoopingSource(t *testing.T) {
	table := hrtf.New()
	obj := New()
	looping := newTestSource(t, table, true)
	obj.Play("a", looping)
	obj.Cancel("a", 0.5)

	if looping.State() != source.FadeOut {
		t.Errorf("cancel(name, tau>0) should fade a looping source, got state=%v", looping.State())
	}
}

func TestSetLoopOnlyAffectsFirstMatch(t *testing.T) {
	table := hrtf.New()
	obj := New()
	first := newTestSource(t, table, false)
	second := newTestSource(t, table, true)
	obj.Play("a", first)
	obj.Play("a", second)

	obj.SetLoop("a", true)
	if !first.Loop() {
		t.Error("SetLoop should enable loop on the first source inserted")
	}
	if second.Loop() {
		t.Error("SetLoop should disable loop on every source after the first")
	}
}

func TestGetLoopTrueIfAnySourceLoops(t *testing.T) {
	table := hrtf.New()
	obj := New()
	obj.Play("a", newTestSource(t, table, false))
	obj.Play("a", newTestSource(t, table, true))
	if !obj.GetLoop("a") {
		t.Fatal("GetLoop should be true when any source at the key loops")
	}
}

func TestCancelAllForceKillsEverything(t *testing.T) {
	table := hrtf.New()
	obj := New()
	obj.Play("a", newTestSource(t, table, true))
	obj.PlayIndexed(0, newTestSource(t, table, true))
	obj.CancelAll(true, 0)
	if obj.Active() {
		t.Fatal("CancelAll(force=true) should leave the object inactive")
	}
}

func TestCancelAllNonForceOnlyFadesLoopers(t *testing.T) {
	table := hrtf.New()
	obj := New()
	looping := newTestSource(t, table, true)
	nonLooping := newTestSource(t, table, false)
	obj.Play("a", looping)
	obj.Play("b", nonLooping)

	obj.CancelAll(false, 0.2)
	if looping.State() != source.FadeOut {
		t.Errorf("looping source state = %v, want FadeOut", looping.State())
	}
	if nonLooping.State() != source.Playing {
		t.Errorf("non-looping source state = %v, want Playing (untouched)", nonLooping.State())
	}
}

func TestReapDropsDeadSourcesAndPrunesEmptyKeys(t *testing.T) {
	table := hrtf.New()
	obj := New()
	src := newTestSource(t, table, true)
	obj.Play("a", src)
	src.Kill()

	obj.Reap()
	if obj.Playing("a") {
		t.Fatal("Reap should have dropped the dead source")
	}
	if obj.Active() {
		t.Fatal("Reap should prune the now-empty key, leaving the object inactive")
	}
}

func TestAutodeleteMarksDeadAndCancelsEverything(t *testing.T) {
	table := hrtf.New()
	obj := New()
	obj.Play("a", newTestSource(t, table, true))
	obj.Autodelete()

	if !obj.Dead() {
		t.Fatal("Autodelete should mark the object dead")
	}
	if obj.Active() {
		t.Fatal("Autodelete should cancel every source")
	}
}

func TestRangeVisitsEverySource(t *testing.T) {
	table := hrtf.New()
	obj := New()
	obj.Play("a", newTestSource(t, table, true))
	obj.PlayIndexed(0, newTestSource(t, table, true))

	count := 0
	obj.Range(func(src *source.Source) { count++ })
	if count != 2 {
		t.Fatalf("Range visited %d sources, want 2", count)
	}
}
