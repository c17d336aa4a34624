package sound

import "testing"

func TestNoiseCacheReuse(t *testing.T) {
	c := newNoiseCache(NewRand(1))
	a := c.get(1.0)
	if a == nil {
		t.Fatal("get(1.0) returned nil")
	}
	if got := c.get(0.5); got != a {
		t.Error("shorter request should reuse the cached buffer")
	}
	if got := c.get(1.0); got != a {
		t.Error("equal request should reuse the cached buffer")
	}
	b := c.get(3.0)
	if b == a {
		t.Error("longer request must regenerate")
	}
	if len(b.data) != 3*SampleRate {
		t.Errorf("len = %d, want %d", len(b.data), 3*SampleRate)
	}
	if got := c.get(1.0); got != b {
		t.Error("regenerated buffer should now serve shorter requests")
	}
}

func TestNoiseCacheRejectsNonPositiveDuration(t *testing.T) {
	c := newNoiseCache(NewRand(1))
	if c.get(0) != nil {
		t.Error("get(0) should be nil")
	}
	if c.get(-1) != nil {
		t.Error("get(-1) should be nil")
	}
}

func TestNoiseSamplesInRange(t *testing.T) {
	c := newNoiseCache(NewRand(99))
	buf := c.get(0.1)
	for i, v := range buf.data {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d = %v out of [-1,1]", i, v)
		}
	}
}

func TestNoiseBurstEndsAfterDuration(t *testing.T) {
	c := newNoiseCache(NewRand(2))
	buf := c.get(0.5)
	s := newNoiseBurst(buf, 0, 0.01)
	n := int(0.01 * SampleRate)
	for i := 0; i < n; i++ {
		if _, ok := s.sample(0); !ok {
			t.Fatalf("burst exhausted early at sample %d", i)
		}
	}
	if _, ok := s.sample(0); ok {
		t.Error("burst should be exhausted after its duration")
	}
}

func TestNoiseSourceLoopsAndWraps(t *testing.T) {
	buf := &NoiseBuffer{duration: 0, data: []float64{0.1, 0.2, 0.3}}
	s := newNoiseSource(buf, true)
	want := []float64{0.1, 0.2, 0.3, 0.1, 0.2}
	for i, w := range want {
		v, ok := s.sample(0)
		if !ok || v != w {
			t.Fatalf("sample %d = (%v,%v), want (%v,true)", i, v, ok, w)
		}
	}
}
