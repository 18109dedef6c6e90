package main

import (
	"fmt"
	"strconv"
	"strings"

	"decentpay/client"
	"decentpay/lifecycle"
)

func printOutcome(outcome *lifecycle.Outcome) {
	if outcome.Duplicate {
		fmt.Printf("Already submitted. Transaction: %s\n", outcome.Hash)
		return
	}
	fmt.Printf("Confirmed. Transaction: %s\n", outcome.Hash)
}

func getEscrow(s *session, id uint32) error {
	e, err := s.client.GetEscrow(s.ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("escrow %d does not exist", id)
	}
	fmt.Printf("Escrow #%d (%s)\n", e.ID, e.Status)
	if e.ProjectTitle != "" {
		fmt.Printf("  Title:        %s\n", e.ProjectTitle)
	}
	fmt.Printf("  Depositor:    %s\n", e.Depositor)
	if e.Beneficiary != "" {
		fmt.Printf("  Beneficiary:  %s\n", e.Beneficiary)
	} else if e.IsOpenJob {
		fmt.Printf("  Beneficiary:  (open job)\n")
	}
	if e.Token != "" {
		fmt.Printf("  Token:        %s\n", e.Token)
	}
	fmt.Printf("  Total:        %s\n", e.TotalAmount)
	fmt.Printf("  Paid:         %s\n", e.PaidAmount)
	fmt.Printf("  Remaining:    %s\n", e.Remaining())
	fmt.Printf("  Milestones:   %d\n", e.MilestoneCount)
	if e.Deadline != 0 {
		fmt.Printf("  Deadline:     %d\n", e.Deadline)
	}
	return nil
}

func getMilestones(s *session, id uint32) error {
	milestones, err := s.client.GetMilestones(s.ctx, id)
	if err != nil {
		return err
	}
	if len(milestones) == 0 {
		fmt.Printf("Escrow %d has no milestones.\n", id)
		return nil
	}
	for i, m := range milestones {
		fmt.Printf("[%d] %s  %s  %s\n", i, m.Status, m.Amount, m.Description)
		if m.DisputeReason != "" {
			fmt.Printf("    dispute: %s\n", m.DisputeReason)
		}
		if m.RejectionReason != "" {
			fmt.Printf("    rejected: %s\n", m.RejectionReason)
		}
	}
	return nil
}

func getApplications(s *session, id uint32) error {
	apps, err := s.client.GetApplications(s.ctx, id)
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Printf("Escrow %d has no applications.\n", id)
		return nil
	}
	for i, a := range apps {
		fmt.Printf("[%d] %s\n", i, a.Freelancer)
		if a.ProposedTimeline != 0 {
			fmt.Printf("    timeline: %d days\n", a.ProposedTimeline)
		}
		if a.CoverLetter != "" {
			fmt.Printf("    %s\n", a.CoverLetter)
		}
	}
	return nil
}

func highestEscrow() error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()
	highest, err := s.client.FindHighestEscrowID(s.ctx, s.cfg.DiscoveryUpperBound)
	if err != nil {
		return err
	}
	if highest == 0 {
		fmt.Println("No escrows exist yet.")
		return nil
	}
	fmt.Printf("Highest escrow ID: %d\n", highest)
	return nil
}

func myEscrows() error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	ids, err := s.client.GetUserEscrows(s.ctx, s.address)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No escrows for", s.address)
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func reputation(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("a freelancer address is required")
	}
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()
	rep, err := s.client.GetReputation(s.ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Badge:      %s\n", rep.Badge)
	fmt.Printf("Score:      %d\n", rep.Score)
	fmt.Printf("Completed:  %d\n", rep.Completed)
	if rep.Average.Count > 0 {
		fmt.Printf("Rating:     %.2f (%d reviews)\n", rep.Average.Stars(), rep.Average.Count)
	} else {
		fmt.Println("Rating:     no reviews yet")
	}
	return nil
}

func createEscrow(args []string) error {
	var beneficiary, token string
	positional := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--beneficiary" && i+1 < len(args):
			beneficiary = args[i+1]
			i++
		case args[i] == "--token" && i+1 < len(args):
			token = args[i+1]
			i++
		default:
			positional = append(positional, args[i])
		}
	}
	if len(positional) < 4 {
		return fmt.Errorf("usage: create-escrow <total> <duration-secs> <title> <amount:description>...")
	}
	total, err := parseAmount(positional[0])
	if err != nil {
		return err
	}
	duration, err := strconv.ParseUint(positional[1], 10, 32)
	if err != nil {
		return fmt.Errorf("duration %q is not an unsigned integer", positional[1])
	}
	title := positional[2]

	milestones := make([]client.MilestoneInput, 0, len(positional)-3)
	for _, spec := range positional[3:] {
		amountRaw, description, found := strings.Cut(spec, ":")
		if !found {
			return fmt.Errorf("milestone %q must be <amount>:<description>", spec)
		}
		amount, err := parseAmount(amountRaw)
		if err != nil {
			return err
		}
		milestones = append(milestones, client.MilestoneInput{Amount: amount, Description: description})
	}

	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	id, outcome, err := s.client.CreateEscrow(s.ctx, client.CreateEscrowParams{
		Depositor:    s.address,
		Beneficiary:  beneficiary,
		Milestones:   milestones,
		Token:        token,
		TotalAmount:  total,
		Duration:     uint32(duration),
		ProjectTitle: title,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created escrow #%d\n", id)
	printOutcome(outcome)
	return nil
}

func startWork(s *session, id uint32) error {
	outcome, err := s.client.StartWork(s.ctx, id, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

type milestoneFn func(s *session, id, index uint32, extra string) error

// milestoneAction parses "<id> <index> [extra]" and runs fn in a signing
// session. extraName is empty for commands that take no trailing argument.
func milestoneAction(args []string, fn milestoneFn, extraName string) error {
	want := 2
	if extraName != "" {
		want = 3
	}
	if len(args) < want {
		if extraName != "" {
			return fmt.Errorf("usage: <id> <index> <%s>", extraName)
		}
		return fmt.Errorf("usage: <id> <index>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	index, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("milestone index %q is not an unsigned integer", args[1])
	}
	extra := ""
	if extraName != "" {
		extra = strings.Join(args[2:], " ")
	}
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s, id, uint32(index), extra)
}

func submitMilestone(s *session, id, index uint32, description string) error {
	outcome, err := s.client.SubmitMilestone(s.ctx, id, index, description, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func resubmitMilestone(s *session, id, index uint32, description string) error {
	outcome, err := s.client.ResubmitMilestone(s.ctx, id, index, description, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func approveMilestone(s *session, id, index uint32, _ string) error {
	outcome, err := s.client.ApproveMilestone(s.ctx, id, index, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func rejectMilestone(s *session, id, index uint32, reason string) error {
	outcome, err := s.client.RejectMilestone(s.ctx, id, index, reason, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func disputeMilestone(s *session, id, index uint32, reason string) error {
	outcome, err := s.client.DisputeMilestone(s.ctx, id, index, reason, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func resolveDispute(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: resolve-dispute <id> <index> <amount>")
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	return milestoneAction(args[:2], func(s *session, id, index uint32, _ string) error {
		outcome, err := s.client.ResolveDispute(s.ctx, id, index, amount, s.address)
		if err != nil {
			return err
		}
		printOutcome(outcome)
		return nil
	}, "")
}

func refundEscrow(s *session, id uint32) error {
	outcome, err := s.client.RefundEscrow(s.ctx, id, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func emergencyRefund(s *session, id uint32) error {
	outcome, err := s.client.EmergencyRefundAfterDeadline(s.ctx, id, s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func extendDeadline(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: extend-deadline <id> <extra-seconds>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	extra, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("extension %q is not an unsigned integer", args[1])
	}
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	outcome, err := s.client.ExtendDeadline(s.ctx, id, uint32(extra), s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func submitRating(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: rate <id> <stars> <review>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	stars, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("stars %q is not an unsigned integer", args[1])
	}
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	outcome, err := s.client.SubmitRating(s.ctx, id, uint32(stars), strings.Join(args[2:], " "), s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func applyToJob(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: apply <id> <cover-letter> [timeline-days]")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var timeline uint64
	cover := args[1]
	if len(args) >= 3 {
		timeline, err = strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return fmt.Errorf("timeline %q is not an unsigned integer", args[2])
		}
	}
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	outcome, err := s.client.ApplyToJob(s.ctx, id, s.address, cover, uint32(timeline))
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}

func acceptFreelancer(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: accept <id> <freelancer>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()
	outcome, err := s.client.AcceptFreelancer(s.ctx, id, args[1], s.address)
	if err != nil {
		return err
	}
	printOutcome(outcome)
	return nil
}
