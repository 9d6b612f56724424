package topology

import "time"

// DefaultHistoryCapacity is the number of commands kept for undo
const DefaultHistoryCapacity = 50

// entry is one position in the command log
type entry struct {
	cmd Command
	at  time.Time
}

// history is a bounded command log with a cursor. index points at the last
// applied entry; -1 means nothing is applied. index always stays within
// [-1, len(entries)-1].
type history struct {
	entries  []entry
	index    int
	capacity int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &history{index: -1, capacity: capacity}
}

// record drops any redoable entries, appends cmd and evicts the oldest entry
// once capacity is exceeded
func (h *history) record(cmd Command, at time.Time) {
	if h.index < len(h.entries)-1 {
		h.entries = h.entries[:h.index+1]
	}

	h.entries = append(h.entries, entry{cmd: cmd, at: at})
	h.index = len(h.entries) - 1

	if len(h.entries) > h.capacity {
		h.entries[0] = entry{}
		h.entries = h.entries[1:]
		h.index--
	}
}

func (h *history) canUndo() bool {
	return h.index >= 0
}

func (h *history) canRedo() bool {
	return h.index < len(h.entries)-1
}

func (h *history) reset() {
	h.entries = nil
	h.index = -1
}

// HistoryEntry is a read-only view of one log entry
type HistoryEntry struct {
	Action    Action `json:"action"`
	Subject   string `json:"subject"`
	Timestamp int64  `json:"timestamp"`
	Applied   bool   `json:"applied"`
}

// HistoryState is a read-only view of the command log
type HistoryState struct {
	Entries  []HistoryEntry `json:"entries"`
	Index    int            `json:"index"`
	Capacity int            `json:"capacity"`
	CanUndo  bool           `json:"can_undo"`
	CanRedo  bool           `json:"can_redo"`
}

func (h *history) state() HistoryState {
	entries := make([]HistoryEntry, 0, len(h.entries))
	for i, e := range h.entries {
		entries = append(entries, HistoryEntry{
			Action:    e.cmd.Action(),
			Subject:   e.cmd.Subject(),
			Timestamp: e.at.UnixMilli(),
			Applied:   i <= h.index,
		})
	}
	return HistoryState{
		Entries:  entries,
		Index:    h.index,
		Capacity: h.capacity,
		CanUndo:  h.canUndo(),
		CanRedo:  h.canRedo(),
	}
}
