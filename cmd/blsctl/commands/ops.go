package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zmlAEQ/bls-host/internal/host"
	"github.com/zmlAEQ/bls-host/pkg/metrics"
)

func randomCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "random COUNT",
		Short: "Print COUNT random bytes from the process generator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("count: %w", err)}
			}
			out, err := a.host.GetRandom(ctxOf(cmd), n)
			if err != nil {
				return failed(host.OpGetRandom, err)
			}
			a.printHex(out)
			return nil
		},
	}
}

func keygenCmd(a *app) *cobra.Command {
	var seedHex, seedText string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a 32-byte private key (random, or derived from a seed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				sk  []byte
				err error
			)
			switch {
			case seedHex != "" && seedText != "":
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("--seed and --seed-text are exclusive")}
			case seedHex != "":
				seed, derr := decodeHex("seed", seedHex)
				if derr != nil {
					return derr
				}
				sk, err = a.host.GeneratePrivateKeySeed(ctxOf(cmd), seed)
			case seedText != "":
				sk, err = a.host.GeneratePrivateKeySeed(ctxOf(cmd), []byte(seedText))
			default:
				sk, err = a.host.GeneratePrivateKeyRandom(ctxOf(cmd))
			}
			if err != nil {
				return failed("keygen", err)
			}
			a.printHex(sk)
			return nil
		},
	}
	cmd.Flags().StringVar(&seedHex, "seed", "", "hex seed for deterministic derivation")
	cmd.Flags().StringVar(&seedText, "seed-text", "", "text seed for deterministic derivation")
	return cmd
}

func pubkeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey PRIVATE_KEY",
		Short: "Print the compressed public key of a 32 or 64 byte private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := decodeHex("private key", args[0])
			if err != nil {
				return err
			}
			pk, err := a.host.GetPublicKey(ctxOf(cmd), sk)
			if err != nil {
				return failed(host.OpGetPublicKey, err)
			}
			a.printHex(pk)
			return nil
		},
	}
}

func messageArg(hexMsg bool, arg string) ([]byte, error) {
	if hexMsg {
		return decodeHex("message", arg)
	}
	return []byte(arg), nil
}

func signCmd(a *app) *cobra.Command {
	var hexMsg bool
	cmd := &cobra.Command{
		Use:   "sign PRIVATE_KEY MESSAGE",
		Short: "Print the compressed signature of MESSAGE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := decodeHex("private key", args[0])
			if err != nil {
				return err
			}
			msg, err := messageArg(hexMsg, args[1])
			if err != nil {
				return err
			}
			sig, err := a.host.Sign(ctxOf(cmd), sk, msg)
			if err != nil {
				return failed(host.OpSign, err)
			}
			a.printHex(sig)
			return nil
		},
	}
	cmd.Flags().BoolVar(&hexMsg, "hex-msg", false, "MESSAGE is hex encoded")
	return cmd
}

func verifyCmd(a *app) *cobra.Command {
	var hexMsg bool
	cmd := &cobra.Command{
		Use:   "verify PUBLIC_KEY SIGNATURE MESSAGE",
		Short: "Verify a signature; exit 0 valid, 1 invalid, 2 malformed input",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pk, err := decodeHex("public key", args[0])
			if err != nil {
				return err
			}
			sig, err := decodeHex("signature", args[1])
			if err != nil {
				return err
			}
			msg, err := messageArg(hexMsg, args[2])
			if err != nil {
				return err
			}
			st, err := a.host.Verify(ctxOf(cmd), pk, sig, msg)
			if err != nil {
				return failed(host.OpVerify, err)
			}
			fmt.Fprintln(a.opts.Out, st)
			if st != host.StatusValid {
				return &ExitError{Code: ExitInvalid}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&hexMsg, "hex-msg", false, "MESSAGE is hex encoded")
	return cmd
}

func metricsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print process metrics in Prometheus text format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(a.opts.Out, metrics.DumpProm())
			return nil
		},
	}
}
