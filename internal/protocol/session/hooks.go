package session

import "context"

// Hook observes command execution. Hooks run on the caller's goroutine.
type Hook interface {
	OnCommandStart(ctx context.Context, info CommandInfo) (context.Context, HookToken)
	OnCommandEnd(ctx context.Context, token HookToken, info CommandInfo, stats *CommandStats, err error)
}

// HookToken is returned by OnCommandStart and handed back to OnCommandEnd.
// Only meaningful to the Hook that created it.
type HookToken any

// CommandInfo identifies one command invocation.
type CommandInfo struct {
	Command   string
	SessionID string
}

// CommandStats counts channel traffic and decoded records for one command.
type CommandStats struct {
	LinesWritten int64
	LinesRead    int64
	BytesWritten int64
	BytesRead    int64
	Records      map[string]int64
	Dropped      int64
}

func newCommandStats() *CommandStats {
	return &CommandStats{Records: make(map[string]int64)}
}

func (s *CommandStats) recordWrite(n int) {
	s.LinesWritten++
	s.BytesWritten += int64(n) + 1
}

func (s *CommandStats) recordRead(n int) {
	s.LinesRead++
	s.BytesRead += int64(n) + 1
}

func (s *CommandStats) recordTag(tag string) {
	s.Records[tag]++
}
