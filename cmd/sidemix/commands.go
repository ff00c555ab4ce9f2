package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/seashells/side/pkg/engine"
)

// parseCommand decodes one control line:
//
//	play <slot> | loop <slot> | stop <slot> | stopall | loopall
//	scene <id,id,id,id> | random <same> <odd>
//
// Slots are numbered from 1 like the channel labels in the logs.
func parseCommand(line string) (engine.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return engine.Command{}, fmt.Errorf("empty command")
	}

	var cmd engine.Command
	switch strings.ToLower(fields[0]) {
	case "play":
		cmd.Kind = engine.CommandPlay
	case "loop":
		cmd.Kind = engine.CommandLoop
	case "stop":
		cmd.Kind = engine.CommandStop
	case "stopall":
		cmd.Kind = engine.CommandStopAll
		return cmd, nil
	case "loopall":
		cmd.Kind = engine.CommandLoopAll
		return cmd, nil
	case "scene":
		if len(fields) != 2 {
			return cmd, fmt.Errorf("usage: scene <id,id,id,id>")
		}
		ids, err := parseScene(fields[1])
		if err != nil {
			return cmd, err
		}
		cmd.Kind = engine.CommandScene
		cmd.Clips = ids
		return cmd, nil
	case "random":
		if len(fields) != 3 {
			return cmd, fmt.Errorf("usage: random <same> <odd>")
		}
		a, errA := strconv.Atoi(fields[1])
		b, errB := strconv.Atoi(fields[2])
		if errA != nil || errB != nil || a < 0 || b < 0 || a+b > engine.Channels {
			return cmd, fmt.Errorf("random needs two counts adding up to at most %d", engine.Channels)
		}
		cmd.Kind = engine.CommandRandomSet
		cmd.NeedA, cmd.NeedB = a, b
		return cmd, nil
	default:
		return cmd, fmt.Errorf("unknown command %q", fields[0])
	}

	if len(fields) != 2 {
		return cmd, fmt.Errorf("usage: %s <slot>", fields[0])
	}
	slot, err := strconv.Atoi(fields[1])
	if err != nil || slot < 1 || slot > engine.Channels {
		return cmd, fmt.Errorf("slot must be 1..%d, got %q", engine.Channels, fields[1])
	}
	cmd.Slot = slot - 1
	return cmd, nil
}

// readCommands queues every valid line of r until r ends.
func readCommands(r io.Reader, q *engine.Queue) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			logger.Warnf("%v", err)
			continue
		}
		q.Push(cmd)
	}
	return sc.Err()
}
