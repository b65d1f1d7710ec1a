// Command bitcoin-echo is a CLI over the bitcoin package's key, signature,
// address, and script primitives (spec.md §2/§4).
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bitcoinecho/node/internal/cache"
	"github.com/bitcoinecho/node/internal/fetch"
	"github.com/bitcoinecho/node/pkg/bitcoin"
)

const (
	appName    = "bitcoin-echo"
	appVersion = "0.2.0-dev"
)

var (
	testnet   bool
	cachePath string
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	root := &cobra.Command{
		Use:   appName,
		Short: "Tools for secp256k1 keys, signatures, addresses, and Bitcoin Script",
	}
	root.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet address prefixes (the fee command always resolves inputs from the mainnet endpoint)")
	root.PersistentFlags().StringVar(&cachePath, "cache", defaultCachePath(), "path to the transaction JSON disk cache")

	root.AddCommand(versionCmd(), addressCmd(), signCmd(), verifyCmd(), scriptCmd(), feeCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "tx.cache.json"
	}
	return filepath.Join(dir, appName, "tx.cache.json")
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s %s\n", appName, appVersion)
			return nil
		},
	}
}

func addressCmd() *cobra.Command {
	var wif, secretHex string
	var compressed bool

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive a Bitcoin address from a WIF key or a raw hex secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			var priv *bitcoin.PrivateKey
			switch {
			case wif != "":
				key, comp, tn, err := bitcoin.ParseWIF(wif)
				if err != nil {
					return fmt.Errorf("parsing wif: %w", err)
				}
				priv, compressed, testnet = key, comp, tn
			case secretHex != "":
				secretBytes, err := hex.DecodeString(secretHex)
				if err != nil {
					return fmt.Errorf("parsing secret: %w", err)
				}
				priv, err = bitcoin.NewPrivateKey(new(big.Int).SetBytes(secretBytes))
				if err != nil {
					return fmt.Errorf("building private key: %w", err)
				}
			default:
				return fmt.Errorf("one of --wif or --secret is required")
			}

			fmt.Println(priv.Point.Address(compressed, testnet))
			return nil
		},
	}
	cmd.Flags().StringVar(&wif, "wif", "", "WIF-encoded private key")
	cmd.Flags().StringVar(&secretHex, "secret", "", "hex-encoded private key secret")
	cmd.Flags().BoolVar(&compressed, "compressed", true, "use the compressed SEC encoding (ignored with --wif)")
	return cmd
}

func signCmd() *cobra.Command {
	var wif, digestHex string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a hex-encoded digest with a WIF private key",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, _, _, err := bitcoin.ParseWIF(wif)
			if err != nil {
				return fmt.Errorf("parsing wif: %w", err)
			}
			digestBytes, err := hex.DecodeString(digestHex)
			if err != nil {
				return fmt.Errorf("parsing digest: %w", err)
			}
			sig, err := priv.Sign(new(big.Int).SetBytes(digestBytes))
			if err != nil {
				return fmt.Errorf("signing: %w", err)
			}
			fmt.Println(hex.EncodeToString(sig.Der()))
			return nil
		},
	}
	cmd.Flags().StringVar(&wif, "wif", "", "WIF-encoded private key")
	cmd.Flags().StringVar(&digestHex, "digest", "", "hex-encoded 32-byte digest to sign")
	cmd.MarkFlagRequired("wif")
	cmd.MarkFlagRequired("digest")
	return cmd
}

func verifyCmd() *cobra.Command {
	var secHex, derHex, digestHex string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a DER signature against a SEC pubkey and digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			secBytes, err := hex.DecodeString(secHex)
			if err != nil {
				return fmt.Errorf("parsing pubkey: %w", err)
			}
			point, err := bitcoin.ParseSEC(secBytes)
			if err != nil {
				return fmt.Errorf("parsing pubkey: %w", err)
			}
			derBytes, err := hex.DecodeString(derHex)
			if err != nil {
				return fmt.Errorf("parsing signature: %w", err)
			}
			sig, err := bitcoin.ParseDER(derBytes)
			if err != nil {
				return fmt.Errorf("parsing signature: %w", err)
			}
			digestBytes, err := hex.DecodeString(digestHex)
			if err != nil {
				return fmt.Errorf("parsing digest: %w", err)
			}
			ok := point.Verify(new(big.Int).SetBytes(digestBytes), sig)
			fmt.Println(ok)
			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&secHex, "pubkey", "", "hex-encoded SEC public key")
	cmd.Flags().StringVar(&derHex, "sig", "", "hex-encoded DER signature")
	cmd.Flags().StringVar(&digestHex, "digest", "", "hex-encoded 32-byte digest")
	cmd.MarkFlagRequired("pubkey")
	cmd.MarkFlagRequired("sig")
	cmd.MarkFlagRequired("digest")
	return cmd
}

func scriptCmd() *cobra.Command {
	var scriptSigHex, scriptPubKeyHex, digestHex string
	var locktime, sequence, version uint32

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Evaluate a scriptSig+scriptPubKey pair against a sighash digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigBytes, err := hex.DecodeString(scriptSigHex)
			if err != nil {
				return fmt.Errorf("parsing scriptSig: %w", err)
			}
			pubKeyBytes, err := hex.DecodeString(scriptPubKeyHex)
			if err != nil {
				return fmt.Errorf("parsing scriptPubKey: %w", err)
			}
			scriptSig, err := bitcoin.ParseScriptBody(sigBytes)
			if err != nil {
				return fmt.Errorf("parsing scriptSig body: %w", err)
			}
			scriptPubKey, err := bitcoin.ParseScriptBody(pubKeyBytes)
			if err != nil {
				return fmt.Errorf("parsing scriptPubKey body: %w", err)
			}
			combined := append(append(bitcoin.Script{}, scriptSig...), scriptPubKey...)
			fmt.Println(combined.String())

			digestBytes, err := hex.DecodeString(digestHex)
			if err != nil {
				return fmt.Errorf("parsing digest: %w", err)
			}
			ok := combined.Evaluate(new(big.Int).SetBytes(digestBytes), locktime, sequence, version)
			fmt.Println(ok)
			if !ok {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scriptSigHex, "script-sig", "", "hex-encoded scriptSig body")
	cmd.Flags().StringVar(&scriptPubKeyHex, "script-pubkey", "", "hex-encoded scriptPubKey body")
	cmd.Flags().StringVar(&digestHex, "digest", "", "hex-encoded sighash digest")
	cmd.Flags().Uint32Var(&locktime, "locktime", 0, "transaction locktime, for OP_CHECKLOCKTIMEVERIFY")
	cmd.Flags().Uint32Var(&sequence, "sequence", 0xffffffff, "input sequence, for OP_CHECKLOCKTIMEVERIFY/OP_CHECKSEQUENCEVERIFY")
	cmd.Flags().Uint32Var(&version, "tx-version", 1, "transaction version, for OP_CHECKSEQUENCEVERIFY")
	cmd.MarkFlagRequired("script-sig")
	cmd.MarkFlagRequired("script-pubkey")
	cmd.MarkFlagRequired("digest")
	return cmd
}

func feeCmd() *cobra.Command {
	var rawHex string

	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Compute a transaction's fee, resolving previous outputs via blockstream.info",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(rawHex)
			if err != nil {
				return fmt.Errorf("parsing transaction: %w", err)
			}
			tx, err := bitcoin.DeserializeTransaction(raw)
			if err != nil {
				return fmt.Errorf("parsing transaction: %w", err)
			}

			fetcher, err := cache.NewFetcher(fetch.NewHTTPFetcher(), cachePath)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}

			fee, err := tx.Fee(context.Background(), fetcher)
			if err != nil {
				return fmt.Errorf("computing fee: %w", err)
			}
			fmt.Println(fee)

			return fetcher.Cache.Dump()
		},
	}
	cmd.Flags().StringVar(&rawHex, "tx", "", "hex-encoded legacy transaction")
	cmd.MarkFlagRequired("tx")
	return cmd
}
