package engine

import "fmt"

// CommandKind identifies a decoded control command.
type CommandKind int

const (
	CommandPlay CommandKind = iota + 1
	CommandLoop
	CommandStop
	CommandStopAll
	CommandScene
	CommandLoopAll
	CommandRandomSet
)

func (k CommandKind) String() string {
	switch k {
	case CommandPlay:
		return "play"
	case CommandLoop:
		return "loop"
	case CommandStop:
		return "stop"
	case CommandStopAll:
		return "stop-all"
	case CommandScene:
		return "scene"
	case CommandLoopAll:
		return "loop-all"
	case CommandRandomSet:
		return "random-set"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is a control command received from the master node.
type Command struct {
	Kind CommandKind
	// Slot is the channel of play, loop and stop commands.
	Slot int
	// Clips are the ids of a scene command, one per channel.
	Clips [Channels]uint16
	// NeedA and NeedB are how many matching and odd clips a random set
	// command draws.
	NeedA, NeedB int
}

// Dispatch applies cmd to the engine.
func (e *Engine) Dispatch(cmd Command) error {
	logger.Debugf("command %s slot=%d", cmd.Kind, cmd.Slot)

	switch cmd.Kind {
	case CommandPlay:
		return e.Play(cmd.Slot)
	case CommandLoop:
		return e.Loop(cmd.Slot)
	case CommandStop:
		return e.Stop(cmd.Slot)
	case CommandStopAll:
		e.StopAll()
		return nil
	case CommandScene:
		return e.Scene(cmd.Clips)
	case CommandLoopAll:
		return e.LoopAll()
	case CommandRandomSet:
		_, _, err := e.RandomSet(cmd.NeedA, cmd.NeedB)
		return err
	default:
		return fmt.Errorf("engine: unknown command %d", int(cmd.Kind))
	}
}
