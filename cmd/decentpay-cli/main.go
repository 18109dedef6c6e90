package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"decentpay/client"
	"decentpay/config"
	"decentpay/crypto"
	"decentpay/lifecycle"
	"decentpay/observability/logging"
	"decentpay/rpc"
)

var (
	configPath   = envOr("DECENTPAY_CONFIG", "config.toml")
	keystorePath = envOr("DECENTPAY_KEYSTORE", "wallet.keystore")
	passphrase   = os.Getenv("DECENTPAY_KEYSTORE_PASSPHRASE")
)

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func main() {
	args := applyGlobalFlags(os.Args[1:])
	if len(args) < 1 {
		printUsage()
		return
	}

	command := args[0]
	rest := args[1:]
	var err error
	switch command {
	case "generate-key":
		err = generateKey()
	case "address":
		err = printAddress()
	case "create-escrow":
		err = createEscrow(rest)
	case "get-escrow":
		err = withID(rest, false, getEscrow)
	case "milestones":
		err = withID(rest, false, getMilestones)
	case "applications":
		err = withID(rest, false, getApplications)
	case "highest-escrow":
		err = highestEscrow()
	case "my-escrows":
		err = myEscrows()
	case "reputation":
		err = reputation(rest)
	case "start-work":
		err = withID(rest, true, startWork)
	case "submit-milestone":
		err = milestoneAction(rest, submitMilestone, "description")
	case "resubmit-milestone":
		err = milestoneAction(rest, resubmitMilestone, "description")
	case "approve-milestone":
		err = milestoneAction(rest, approveMilestone, "")
	case "reject-milestone":
		err = milestoneAction(rest, rejectMilestone, "reason")
	case "dispute-milestone":
		err = milestoneAction(rest, disputeMilestone, "reason")
	case "resolve-dispute":
		err = resolveDispute(rest)
	case "refund":
		err = withID(rest, true, refundEscrow)
	case "emergency-refund":
		err = withID(rest, true, emergencyRefund)
	case "extend-deadline":
		err = extendDeadline(rest)
	case "rate":
		err = submitRating(rest)
	case "apply":
		err = applyToJob(rest)
	case "accept":
		err = acceptFreelancer(rest)
	case "admin":
		err = adminCommand(rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func applyGlobalFlags(args []string) []string {
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case args[i] == "--keystore" && i+1 < len(args):
			keystorePath = args[i+1]
			i++
		default:
			remaining = append(remaining, args[i])
		}
	}
	return remaining
}

func printUsage() {
	fmt.Println(`Usage: decentpay-cli [--config <path>] [--keystore <path>] <command> [args]

Key management:
  generate-key                               Create a new keystore
  address                                    Print the keystore's account address

Reads:
  get-escrow <id>                            Show one escrow
  milestones <id>                            List an escrow's milestones
  applications <id>                          List applications on an open job
  highest-escrow                             Find the highest allocated escrow ID
  my-escrows                                 List escrows for the keystore account
  reputation <address>                       Show a freelancer's reputation

Escrow lifecycle:
  create-escrow <total> <duration-secs> <title> <amount:description>... [--beneficiary <addr>] [--token <addr>]
  start-work <id>
  submit-milestone <id> <index> <description>
  resubmit-milestone <id> <index> <description>
  approve-milestone <id> <index>
  reject-milestone <id> <index> <reason>
  dispute-milestone <id> <index> <reason>
  resolve-dispute <id> <index> <amount>
  refund <id>
  emergency-refund <id>
  extend-deadline <id> <extra-seconds>
  rate <id> <stars> <review>

Marketplace:
  apply <id> <cover-letter> [timeline-days]
  accept <id> <freelancer>

Admin:
  admin initialize <owner> <fee-bp> <collector>
  admin set-fee <bp> | set-collector <addr> | set-owner <addr>
  admin whitelist-token <addr>
  admin authorize-arbiter <addr>
  admin pause | unpause

Environment: DECENTPAY_CONFIG, DECENTPAY_KEYSTORE, DECENTPAY_KEYSTORE_PASSPHRASE`)
}

// session bundles everything a command needs: the SDK client, the signing
// identity and a bounded context.
type session struct {
	client  *client.Client
	cfg     *config.Config
	address string
	ctx     context.Context
	cancel  context.CancelFunc
}

func (s *session) Close() {
	s.cancel()
}

func openSession(needKey bool) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logging.Setup("decentpay-cli", cfg.NetworkName, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if cfg.ContractAddress == "" {
		return nil, fmt.Errorf("ContractAddress is not set in %s", configPath)
	}

	opts := []rpc.Option{
		rpc.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second),
	}
	if cfg.RPCAuthToken != "" {
		opts = append(opts, rpc.WithAuthToken(cfg.RPCAuthToken))
	}
	if cfg.RateLimitPerSecond > 0 {
		opts = append(opts, rpc.WithRateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}
	ledger, err := rpc.NewClient(cfg.RPCEndpoint, opts...)
	if err != nil {
		return nil, err
	}

	var signer lifecycle.Signer = lifecycle.ReadOnlySigner{}
	address := ""
	if needKey {
		if passphrase == "" {
			return nil, fmt.Errorf("DECENTPAY_KEYSTORE_PASSPHRASE is not set")
		}
		key, err := crypto.LoadFromKeystore(keystorePath, passphrase)
		if err != nil {
			return nil, err
		}
		local, err := crypto.NewLocalSigner(key)
		if err != nil {
			return nil, err
		}
		signer = local
		address = local.Address()
	}

	sdk, err := client.New(cfg.ContractAddress, ledger, signer, client.WithLogger(log))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	return &session{client: sdk, cfg: cfg, address: address, ctx: ctx, cancel: cancel}, nil
}

func generateKey() error {
	if passphrase == "" {
		return fmt.Errorf("DECENTPAY_KEYSTORE_PASSPHRASE is not set")
	}
	if _, err := os.Stat(keystorePath); err == nil {
		return fmt.Errorf("keystore %s already exists", keystorePath)
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return err
	}
	if err := crypto.SaveToKeystore(keystorePath, key, passphrase); err != nil {
		return err
	}
	fmt.Printf("New key saved to %s\nAddress: %s\n", keystorePath, key.Address())
	return nil
}

func printAddress() error {
	if passphrase == "" {
		return fmt.Errorf("DECENTPAY_KEYSTORE_PASSPHRASE is not set")
	}
	key, err := crypto.LoadFromKeystore(keystorePath, passphrase)
	if err != nil {
		return err
	}
	fmt.Println(key.Address())
	return nil
}

func withID(args []string, needKey bool, fn func(*session, uint32) error) error {
	if len(args) < 1 {
		return fmt.Errorf("an escrow id is required")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession(needKey)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s, id)
}

func parseID(raw string) (uint32, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("escrow id %q is not an unsigned integer", raw)
	}
	return uint32(id), nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("amount %q is not a base-10 integer", raw)
	}
	return amount, nil
}
