// Command frost-cli drives key generation, signing, and verification for
// the FROST/RICE-FROST threshold signature stack from the command line; it
// has no resharing command. Grounded on
// luxfi-threshold/cmd/threshold-cli/main.go's cobra command tree,
// narrowed to a single protocol and carrying export/import via CBOR
// instead of PEM/JWK.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/frost/internal/frosttest"
	"github.com/luxfi/frost/pkg/ciphersuite"
	"github.com/luxfi/frost/pkg/frost/config"
	"github.com/luxfi/frost/pkg/frost/dkg"
	"github.com/luxfi/frost/pkg/frost/keys"
	"github.com/luxfi/frost/pkg/frost/sign"
	"github.com/luxfi/frost/pkg/math/curve"
	"github.com/luxfi/frost/pkg/math/polynomial"
)

var (
	configDir  string
	threshold  int
	parties    int
	partyIndex int
	outputFile string
	inputFile  string
	message    string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "frost-cli",
		Short: "CLI tool for FROST threshold Schnorr signatures",
		Long:  `A CLI tool for distributed key generation and threshold Schnorr signing under the FROST/RICE-FROST protocol.`,
	}

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Run a local t-of-n DKG simulation and write every participant's config",
		RunE:  runKeygen,
	}

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Produce a threshold signature over a message using a set of local configs",
		RunE:  runSign,
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature file against a group key and message",
		RunE:  runVerify,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run an in-process DKG across n simulated participants and list them",
		RunE:  runSimulate,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export a config to CBOR",
		RunE:  runExport,
	}

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import a config from CBOR and print it as JSON",
		RunE:  runImport,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "d", "./frost-data", "Configuration directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	keygenCmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Threshold value (required)")
	keygenCmd.Flags().IntVarP(&parties, "parties", "n", 0, "Total number of parties (required)")
	_ = keygenCmd.MarkFlagRequired("threshold")
	_ = keygenCmd.MarkFlagRequired("parties")

	signCmd.Flags().StringVarP(&inputFile, "signers-dir", "i", "", "Directory of config-<index>.json files (required)")
	signCmd.Flags().StringVarP(&message, "message", "m", "", "Message to sign (required)")
	signCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output signature file")
	_ = signCmd.MarkFlagRequired("signers-dir")
	_ = signCmd.MarkFlagRequired("message")

	verifyCmd.Flags().StringVarP(&inputFile, "signature", "s", "", "Signature file (required)")
	verifyCmd.Flags().StringVarP(&message, "message", "m", "", "Message (required)")
	verifyCmd.Flags().String("group-key", "", "Hex-encoded group key (required)")
	_ = verifyCmd.MarkFlagRequired("signature")
	_ = verifyCmd.MarkFlagRequired("message")

	simulateCmd.Flags().IntVarP(&parties, "parties", "n", 3, "Number of participants")
	simulateCmd.Flags().IntVarP(&threshold, "threshold", "t", 2, "Threshold")

	exportCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input config JSON file (required)")
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output CBOR file (required)")
	_ = exportCmd.MarkFlagRequired("input")
	_ = exportCmd.MarkFlagRequired("output")

	importCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input CBOR file (required)")
	_ = importCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(keygenCmd, signCmd, verifyCmd, simulateCmd, exportCmd, importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultSuite() ciphersuite.CipherSuite {
	return ciphersuite.Secp256k1Sha256{Context: []byte("frost-cli")}
}

func defaultGroup() curve.Curve {
	return curve.Secp256k1{}
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if threshold <= 0 || parties <= 0 || threshold > parties {
		return fmt.Errorf("invalid threshold/parties: t=%d n=%d", threshold, parties)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	suite := defaultSuite()
	group := defaultGroup()
	params := dkg.ThresholdParameters{N: uint32(parties), T: uint32(threshold)}

	configs, err := runLocalDKG(suite, group, params)
	if err != nil {
		return fmt.Errorf("keygen: %w", err)
	}

	for idx, cfg := range configs {
		data, err := cfg.MarshalJSON()
		if err != nil {
			return fmt.Errorf("marshal config for %d: %w", idx, err)
		}
		path := fmt.Sprintf("%s/config-%d.json", configDir, idx)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("write config for %d: %w", idx, err)
		}
		if verbose {
			fmt.Printf("wrote %s\n", path)
		}
	}

	fmt.Printf("generated %d-of-%d key shares in %s\n", threshold, parties, configDir)
	return nil
}

type dkgDealer struct {
	index     uint32
	dhPriv    *keys.DiffieHellmanPrivateKey
	broadcast *dkg.Participant
	poly      *polynomial.Polynomial
}

// runLocalDKG drives a full DKG where every participant is a dealer,
// entirely in-process, for the keygen and simulate subcommands.
func runLocalDKG(suite ciphersuite.CipherSuite, group curve.Curve, params dkg.ThresholdParameters) (map[uint32]*config.Config, error) {
	indices := frosttest.PartyIDs(int(params.N))

	dealers := make(map[uint32]*dkgDealer, len(indices))
	broadcasts := make([]*dkg.Participant, 0, len(indices))
	for _, idx := range indices {
		p, poly, dhPriv, err := dkg.NewDealer(suite, params, idx, rand.Reader)
		if err != nil {
			return nil, err
		}
		dealers[idx] = &dkgDealer{index: idx, dhPriv: dhPriv, broadcast: p, poly: poly}
		broadcasts = append(broadcasts, p)
	}

	states := make(map[uint32]*dkg.DistributedKeyGeneration, len(indices))
	for _, idx := range indices {
		others := make([]*dkg.Participant, 0, len(indices)-1)
		for _, b := range broadcasts {
			if b.Index != idx {
				others = append(others, b)
			}
		}
		state, _, err := dkg.NewStateInternal(suite, params, dealers[idx].dhPriv, idx, dealers[idx].poly, others, false, rand.Reader)
		if err != nil {
			return nil, err
		}
		states[idx] = state
	}

	allShares := make(map[uint32][]*dkg.EncryptedSecretShare, len(indices))
	for idx, s := range states {
		shares, err := s.TheirEncryptedSecretShares()
		if err != nil {
			return nil, err
		}
		allShares[idx] = shares
	}

	result := make(map[uint32]*config.Config, len(indices))
	for idx, s := range states {
		var incoming []*dkg.EncryptedSecretShare
		for sender, shares := range allShares {
			if sender == idx {
				continue
			}
			incoming = append(incoming, shares...)
		}
		if _, err := s.ToRoundTwo(incoming); err != nil {
			return nil, fmt.Errorf("participant %d round two: %w", idx, err)
		}

		sk, gk, err := s.Finish()
		if err != nil {
			return nil, fmt.Errorf("participant %d finish: %w", idx, err)
		}

		cfg, err := config.FromDKG(group, params.T, sk, gk, s.Commitments(), indices)
		if err != nil {
			return nil, fmt.Errorf("participant %d config: %w", idx, err)
		}
		result[idx] = cfg
	}

	return result, nil
}

// runSign loads every file in --signers-dir that parses and validates as a
// config (skipping the rest), picks the first Threshold of them as the
// signer set, has each produce one fresh commitment share and partial
// signature, and writes the aggregated Schnorr signature to --output
// (default: signature.bin in --signers-dir).
func runSign(cmd *cobra.Command, args []string) error {
	if inputFile == "" {
		return fmt.Errorf("--signers-dir is required")
	}

	entries, err := os.ReadDir(inputFile)
	if err != nil {
		return fmt.Errorf("read config dir: %w", err)
	}

	group := defaultGroup()
	suite := defaultSuite()

	var cfgs []*config.Config
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(inputFile + "/" + e.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", e.Name(), err)
		}
		cfg := config.EmptyConfig(group)
		if err := json.Unmarshal(data, cfg); err != nil {
			continue
		}
		if err := cfg.Validate(); err != nil {
			continue
		}
		cfgs = append(cfgs, cfg)
	}
	if len(cfgs) == 0 {
		return fmt.Errorf("no valid config files found in %s", inputFile)
	}

	threshold := int(cfgs[0].Threshold)
	if len(cfgs) < threshold {
		return fmt.Errorf("have %d configs, need at least %d", len(cfgs), threshold)
	}
	signers := cfgs[:threshold]

	msg := []byte(message)
	signerCommitments := make([]sign.SignerCommitments, len(signers))
	shares := make([]*sign.CommitmentShare, len(signers))
	for i, s := range signers {
		_, secretList, err := sign.GenerateCommitmentShareLists(suite, s.Index, 1, rand.Reader)
		if err != nil {
			return fmt.Errorf("generate commitment for %d: %w", s.Index, err)
		}
		shares[i] = secretList.Commitments[0]
		D, E := shares[i].Publish()
		signerCommitments[i] = sign.SignerCommitments{Index: s.Index, Hiding: D, Binding: E}
	}

	var partials []*sign.PartialSignature
	var R curve.Point
	groupKey := signers[0].GroupKey
	for i, s := range signers {
		partial, r, err := sign.Sign(suite, msg, s.SigningKey, shares[i], signerCommitments, groupKey)
		if err != nil {
			return fmt.Errorf("sign as %d: %w", s.Index, err)
		}
		partials = append(partials, partial)
		R = r
	}

	finalSig := sign.Aggregate(R, partials, group)
	if err := finalSig.Verify(suite, groupKey, msg); err != nil {
		return fmt.Errorf("aggregated signature failed self-verification: %w", err)
	}

	sigBytes, err := finalSig.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal signature: %w", err)
	}

	out := outputFile
	if out == "" {
		out = inputFile + "/signature.bin"
	}
	if err := os.WriteFile(out, sigBytes, 0o600); err != nil {
		return fmt.Errorf("write signature: %w", err)
	}

	groupKeyBytes, err := groupKey.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal group key: %w", err)
	}
	fmt.Printf("wrote signature to %s\ngroup key (hex): %s\n", out, hex.EncodeToString(groupKeyBytes))
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	groupKeyHex, err := cmd.Flags().GetString("group-key")
	if err != nil || groupKeyHex == "" {
		return fmt.Errorf("--group-key is required")
	}
	sigBytes, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("read signature file: %w", err)
	}
	gkBytes, err := hex.DecodeString(groupKeyHex)
	if err != nil {
		return fmt.Errorf("decode group key: %w", err)
	}

	group := defaultGroup()
	groupPoint, err := group.PointFromBytes(gkBytes)
	if err != nil {
		return fmt.Errorf("parse group key: %w", err)
	}

	var sig sign.Signature
	if err := sig.UnmarshalBinary(group, sigBytes); err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}

	suite := defaultSuite()
	if err := sig.Verify(suite, &keys.GroupKey{Key: groupPoint}, []byte(message)); err != nil {
		fmt.Println("signature INVALID:", err)
		os.Exit(1)
	}
	fmt.Println("signature valid")
	return nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if threshold <= 0 || parties <= 0 || threshold > parties {
		return fmt.Errorf("invalid threshold/parties: t=%d n=%d", threshold, parties)
	}

	suite := defaultSuite()
	group := defaultGroup()
	params := dkg.ThresholdParameters{N: uint32(parties), T: uint32(threshold)}

	indices := frosttest.PartyIDs(parties)
	err := frosttest.RunConcurrently(indices, func(id uint32) error {
		if verbose {
			fmt.Printf("participant %d starting round one\n", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	configs, err := runLocalDKG(suite, group, params)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	fmt.Printf("simulated %d-of-%d DKG across %d participants\n", threshold, parties, len(configs))
	for idx := range configs {
		fmt.Printf("  participant %d: ready\n", idx)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("read input config: %w", err)
	}
	cfg := config.EmptyConfig(defaultGroup())
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}

	cborBytes, err := marshalConfigCBOR(cfg)
	if err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	if err := os.WriteFile(outputFile, cborBytes, 0o600); err != nil {
		return fmt.Errorf("write cbor: %w", err)
	}
	fmt.Printf("exported %s to %s\n", inputFile, outputFile)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("read cbor file: %w", err)
	}
	cfg, err := unmarshalConfigCBOR(defaultGroup(), data)
	if err != nil {
		return fmt.Errorf("decode cbor: %w", err)
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
