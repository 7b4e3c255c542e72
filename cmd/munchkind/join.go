package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lanfest/munchkin-lan/internal/client"
	"github.com/lanfest/munchkin-lan/internal/config"
	"github.com/lanfest/munchkin-lan/internal/game"
)

var (
	joinAddr string
	joinName string
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a hosted session",
	Long:  `Connect to a host on the local network and mirror its session, with a small line-based console for local moves.`,
	RunE:  runJoin,
}

func init() {
	joinCmd.Flags().StringVar(&joinAddr, "addr", "", "host address (host:port)")
	joinCmd.Flags().StringVar(&joinName, "name", "Player", "player display name")
	_ = joinCmd.MarkFlagRequired("addr")
}

func runJoin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	player := game.NewPlayer(joinName)
	replica := client.New(player, client.Config{Logger: log})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := replica.Connect(ctx, joinAddr); err != nil {
		return fmt.Errorf("join %s: %w", joinAddr, err)
	}
	defer replica.Disconnect()

	go func() {
		for session := range replica.Updates() {
			printRoster(session, player.ID)
		}
	}()
	go func() {
		if err, ok := <-replica.Errors(); ok && err != nil {
			fmt.Fprintf(os.Stderr, "connection lost: %v\n", err)
			cancel()
		}
	}()

	fmt.Println("commands: level N | gear N | race R | class C | roll | turn | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		if done := runConsoleLine(replica, scanner.Text()); done {
			break
		}
	}
	return nil
}

// runConsoleLine executes one console command, reporting true on quit.
func runConsoleLine(r *client.Replica, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch fields[0] {
	case "quit", "exit":
		return true
	case "level":
		err = withIntArg(fields, r.SetLevel)
	case "gear":
		err = withIntArg(fields, r.SetGear)
	case "race":
		if len(fields) < 2 {
			err = fmt.Errorf("usage: race <id>")
		} else {
			err = r.SetRace(game.RaceID(fields[1]))
		}
	case "class":
		if len(fields) < 2 {
			err = fmt.Errorf("usage: class <id>")
		} else {
			err = r.SetClass(game.ClassID(fields[1]))
		}
	case "roll":
		value := rand.Intn(6) + 1
		fmt.Printf("you rolled %d\n", value)
		err = r.RollDice(value, "manual")
	case "turn":
		err = r.NextTurn()
	default:
		err = fmt.Errorf("unknown command %q", fields[0])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	return false
}

func withIntArg(fields []string, fn func(int) error) error {
	if len(fields) < 2 {
		return fmt.Errorf("usage: %s <number>", fields[0])
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("%s: not a number: %q", fields[0], fields[1])
	}
	return fn(n)
}

func printRoster(s game.Session, selfID string) {
	fmt.Printf("-- %s, turn %d --\n", s.Status, s.TurnNumber)
	for _, p := range s.Players {
		marker := "  "
		if p.ID == selfID {
			marker = "* "
		}
		turn := " "
		if p.ID == s.CurrentTurnPlayerID {
			turn = ">"
		}
		fmt.Printf("%s%s %-16s L%d G%+d %s/%s\n",
			marker, turn, p.Name, p.Level, p.GearBonus, p.Race, p.Class)
	}
	if c := s.CurrentCombat; c != nil {
		fmt.Printf("   combat: %s vs %d monster(s)\n", c.MainPlayerID, len(c.Monsters))
	}
}
