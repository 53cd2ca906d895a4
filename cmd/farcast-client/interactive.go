package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/farcaster-proto/farcaster-go/pkg/command"
	"github.com/farcaster-proto/farcaster-go/pkg/transport"
)

// runInteractive runs the command loop over an established session.
func runInteractive(s *session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "farcast> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	printHelp(rl)

	for {
		line, err := rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			printHelp(rl)

		case "login", "l":
			err = cmdLogin(rl, s, args)

		case "text", "t":
			err = cmdText(rl, s, args)

		case "quit", "exit", "q":
			fmt.Fprintln(rl.Stdout(), "Exiting...")
			return nil

		default:
			fmt.Fprintf(rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}

		if err != nil {
			if errors.Is(err, transport.ErrConnectionClosed) {
				fmt.Fprintln(rl.Stdout(), "Connection closed by server")
				return nil
			}
			fmt.Fprintf(rl.Stdout(), "Error: %v\n", err)
		}
	}
}

func printHelp(rl *readline.Instance) {
	fmt.Fprintln(rl.Stdout(), `
FarCaster Client Commands:
  login <user> <pass> [expiry]  - Send a login (expiry as Unix timestamp, default 24h)
  text <message...>             - Send a text message
  help                          - Show this help
  quit                          - Exit client`)
}

// cmdLogin sends a login command and prints the ack.
func cmdLogin(rl *readline.Instance, s *session, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(rl.Stdout(), "Usage: login <user> <pass> [expiry]")
		return nil
	}

	exp := time.Now().Add(24 * time.Hour).Unix()
	if len(args) >= 3 {
		v, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			fmt.Fprintf(rl.Stdout(), "Invalid expiry: %v\n", err)
			return nil
		}
		exp = v
	}

	env, err := command.NewLoginEnvelope(command.Login{
		Username: args[0],
		Password: args[1],
		Expiry:   exp,
	})
	if err != nil {
		return err
	}

	ack, err := s.roundTrip(env)
	if err != nil {
		return err
	}
	printAckTo(rl, ack)
	return nil
}

// cmdText sends a text message and prints the ack.
func cmdText(rl *readline.Instance, s *session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(rl.Stdout(), "Usage: text <message...>")
		return nil
	}

	env, err := command.NewTextEnvelope(strings.Join(args, " "))
	if err != nil {
		return err
	}

	ack, err := s.roundTrip(env)
	if err != nil {
		return err
	}
	printAckTo(rl, ack)
	return nil
}

func printAckTo(rl *readline.Instance, ack *command.Ack) {
	switch ack.Status {
	case command.StatusOK:
		fmt.Fprintf(rl.Stdout(), "OK: %s\n", ack.Message)
	default:
		fmt.Fprintf(rl.Stdout(), "Rejected: %s\n", ack.Message)
	}
}
