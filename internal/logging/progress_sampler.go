package logging

// ProgressSampler decides which steps of a counted loop deserve a log line:
// the first, the last, and the first step past each percentage bucket.
type ProgressSampler struct {
	bucket     int
	lastBucket int
}

// NewProgressSampler returns a sampler with the given bucket width in percent.
// Widths outside 1..100 fall back to 10.
func NewProgressSampler(bucketPercent int) *ProgressSampler {
	if bucketPercent < 1 || bucketPercent > 100 {
		bucketPercent = 10
	}
	return &ProgressSampler{bucket: bucketPercent, lastBucket: -1}
}

// ShouldLog reports whether step current (1-based) of total should be logged.
// A nil sampler logs every step.
func (s *ProgressSampler) ShouldLog(current, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	current = min(max(current, 1), total)
	if current == 1 || current == total {
		s.lastBucket = current * 100 / total / s.bucket
		return true
	}
	b := current * 100 / total / s.bucket
	if b > s.lastBucket {
		s.lastBucket = b
		return true
	}
	return false
}
