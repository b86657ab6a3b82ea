package notify

import (
	"log"

	"statuecraft.ai/internal/protocol"
)

// Notifier receives export notices.
type Notifier interface {
	Notify(m protocol.NoticeMsg)
}

// LogNotifier prints notices to a logger.
type LogNotifier struct {
	Log *log.Logger
}

func (n LogNotifier) Notify(m protocol.NoticeMsg) {
	if n.Log == nil {
		return
	}
	if m.Type == protocol.TypeError {
		n.Log.Printf("%s [%s] %s: %s", m.Project, m.Code, m.Title, m.Body)
		return
	}
	n.Log.Printf("%s: %s", m.Project, m.Body)
}

// Multi sends every notice to each notifier in order. Nil entries are skipped.
type Multi []Notifier

func (m Multi) Notify(msg protocol.NoticeMsg) {
	for _, n := range m {
		if n != nil {
			n.Notify(msg)
		}
	}
}
