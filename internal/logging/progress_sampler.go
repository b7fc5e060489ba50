package logging

// ProgressSampler thins per-row progress events so a long splice reports
// every N completed rows plus the final one.
type ProgressSampler struct {
	every int
	last  int
}

// NewProgressSampler constructs a sampler that emits every `every` rows
// (default 5).
func NewProgressSampler(every int) *ProgressSampler {
	if every <= 0 {
		every = 5
	}
	return &ProgressSampler{every: every, last: -1}
}

// ShouldLog reports whether the completion of row done out of total should
// be logged. A nil sampler logs everything.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	if done <= s.last {
		return false
	}
	if done%s.every == 0 || done == total {
		s.last = done
		return true
	}
	return false
}

// Reset clears the sampler state.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.last = -1
}
