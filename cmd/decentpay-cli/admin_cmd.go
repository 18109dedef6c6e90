package main

import (
	"fmt"
	"strconv"
)

func adminCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: admin <initialize|set-fee|set-collector|set-owner|whitelist-token|authorize-arbiter|pause|unpause>")
	}
	sub := args[0]
	rest := args[1:]
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	switch sub {
	case "initialize":
		if len(rest) < 3 {
			return fmt.Errorf("usage: admin initialize <owner> <fee-bp> <collector>")
		}
		feeBP, err := strconv.ParseUint(rest[1], 10, 32)
		if err != nil {
			return fmt.Errorf("fee %q is not an unsigned integer", rest[1])
		}
		outcome, err := s.client.Initialize(s.ctx, rest[0], uint32(feeBP), rest[2])
		if err != nil {
			return err
		}
		printOutcome(outcome)
	case "set-fee":
		if len(rest) < 1 {
			return fmt.Errorf("usage: admin set-fee <bp>")
		}
		feeBP, err := strconv.ParseUint(rest[0], 10, 32)
		if err != nil {
			return fmt.Errorf("fee %q is not an unsigned integer", rest[0])
		}
		outcome, err := s.client.SetPlatformFeeBP(s.ctx, uint32(feeBP), s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
	case "set-collector":
		if len(rest) < 1 {
			return fmt.Errorf("usage: admin set-collector <address>")
		}
		outcome, err := s.client.SetFeeCollector(s.ctx, rest[0], s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
	case "set-owner":
		if len(rest) < 1 {
			return fmt.Errorf("usage: admin set-owner <address>")
		}
		outcome, err := s.client.SetOwner(s.ctx, rest[0], s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
	case "whitelist-token":
		if len(rest) < 1 {
			return fmt.Errorf("usage: admin whitelist-token <address>")
		}
		outcome, err := s.client.WhitelistToken(s.ctx, rest[0], s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
	case "authorize-arbiter":
		if len(rest) < 1 {
			return fmt.Errorf("usage: admin authorize-arbiter <address>")
		}
		outcome, err := s.client.AuthorizeArbiter(s.ctx, rest[0], s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
	case "pause":
		outcome, err := s.client.PauseJobCreation(s.ctx, s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
	case "unpause":
		outcome, err := s.client.UnpauseJobCreation(s.ctx, s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
	default:
		return fmt.Errorf("unknown admin command %q", sub)
	}
	return nil
}
