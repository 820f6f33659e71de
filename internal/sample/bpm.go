package sample

import "time"

// BPM returns the beats-per-minute estimate at now.
func (s *Store) BPM(now time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bpmLocked(now)
}

func (s *Store) bpmLocked(now time.Time) int {
	if len(s.samples) == 0 {
		return 0
	}

	nowMs := now.UnixMilli()
	window := s.window.Milliseconds()
	if elapsed := nowMs - s.start; elapsed < window {
		window = elapsed
	}
	if window < 0 {
		window = 0
	}

	windowSeconds := (window + 500) / 1000
	if windowSeconds < 1 {
		windowSeconds = 1
	}

	runs := countRuns(s.samples, nowMs-window, s.threshold)
	return int(60 * int64(runs) / windowSeconds)
}

// countRuns scans samples newest first while timestamp > limit and counts
// maximal runs of values at or above threshold.
func countRuns(samples []Sample, limit int64, threshold int) int {
	runs := 0
	inRun := false
	for i := len(samples) - 1; i >= 0 && samples[i].Timestamp > limit; i-- {
		if samples[i].Value >= threshold {
			if !inRun {
				runs++
				inRun = true
			}
		} else {
			inRun = false
		}
	}
	return runs
}
