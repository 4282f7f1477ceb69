package circuit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// NodeID identifies a node within one evaluation: the path of child indices
// from the root followed by the node name, e.g. "0/2:RX".
type NodeID string

func childID(parent NodeID, i int, op Operator) NodeID {
	path := string(parent)
	if idx := strings.LastIndex(path, ":"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" {
		return NodeID(fmt.Sprintf("%d:%s", i, op.Name()))
	}
	return NodeID(fmt.Sprintf("%s/%d:%s", path, i, op.Name()))
}

func rootID(op Operator) NodeID {
	return NodeID(":" + op.Name())
}

// Instrument observes operator evaluation. OnEnter and OnExit bracket the
// evaluation of every node, children included.
type Instrument interface {
	OnEnter(id NodeID)
	OnExit(id NodeID)
}

// NopInstrument ignores every event.
type NopInstrument struct{}

// OnEnter does nothing.
func (NopInstrument) OnEnter(NodeID) {}

// OnExit does nothing.
func (NopInstrument) OnExit(NodeID) {}

// LogInstrument writes node enter/exit events to a logger at debug level.
type LogInstrument struct {
	logger *log.Logger
}

// NewLogInstrument creates an instrument backed by logger. A nil logger uses
// the package default logger of charmbracelet/log.
func NewLogInstrument(logger *log.Logger) *LogInstrument {
	if logger == nil {
		logger = log.Default()
	}
	return &LogInstrument{logger: logger.WithPrefix("circuit")}
}

// OnEnter logs the start of a node evaluation.
func (l *LogInstrument) OnEnter(id NodeID) {
	l.logger.Debug("enter", "node", id)
}

// OnExit logs the end of a node evaluation.
func (l *LogInstrument) OnExit(id NodeID) {
	l.logger.Debug("exit", "node", id)
}
