package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler lets keep events out of every consecutive every events pass.
// A zero ratio lets everything through.
type ratioSampler struct {
	mu    sync.Mutex
	keep  int
	every int
	seen  int
}

func newRatioSampler(keep, every int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(keep, every)
	return s
}

func (s *ratioSampler) Set(keep, every int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep <= 0 || every <= 0 {
		keep, every = 0, 0
	}
	s.keep, s.every, s.seen = min(keep, every), every, 0
}

func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.every == 0 {
		return true
	}
	s.seen = s.seen%s.every + 1
	return s.seen <= s.keep
}

// parseDebugSample reads "keep/every" or a bare "every" (meaning 1/every).
// "0" or "off" disables sampling; anything unreadable falls back to 1/50.
func parseDebugSample(raw string) (int, int) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "":
		return 1, 50
	case "0", "off":
		return 0, 0
	}
	keepRaw, everyRaw, ok := strings.Cut(raw, "/")
	if !ok {
		keepRaw, everyRaw = "1", raw
	}
	keep, err1 := strconv.Atoi(strings.TrimSpace(keepRaw))
	every, err2 := strconv.Atoi(strings.TrimSpace(everyRaw))
	if err1 != nil || err2 != nil || keep <= 0 || every <= 0 {
		return 1, 50
	}
	return keep, every
}
