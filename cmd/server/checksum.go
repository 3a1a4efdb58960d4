package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wso2/psd2-consent-mgt/internal/checksum"
	"github.com/wso2/psd2-consent-mgt/internal/consent/model"
	"github.com/wso2/psd2-consent-mgt/internal/system/utils"
)

// consentDocument is the file format read by the checksum commands. Dates
// use the YYYY-MM-DD form of the API.
type consentDocument struct {
	model.Consent
	ValidUntil string `json:"validUntil"`
}

func checksumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checksum",
		Short: "Calculate or verify consent checksums offline",
	}
	cmd.AddCommand(checksumCalculateCmd())
	cmd.AddCommand(checksumVerifyCmd())
	return cmd
}

func checksumCalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calculate [consent.json]",
		Short: "Print the checksum of a consent read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			consent, err := readConsent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(checksum.NewDefaultRegistry().Calculate(consent)))
			return nil
		},
	}
}

func checksumVerifyCmd() *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   "verify [consent.json]",
		Short: "Check a stored checksum against a consent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			consent, err := readConsent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if !checksum.NewDefaultRegistry().Verify(consent, []byte(value)) {
				return fmt.Errorf("checksum does not match consent %s", consent.ConsentID)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "checksum matches")
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "checksum", "", "stored checksum to verify")
	_ = cmd.MarkFlagRequired("checksum")
	return cmd
}

func readConsent(stdin io.Reader, args []string) (*model.Consent, error) {
	source := stdin
	if len(args) == 1 && args[0] != "-" {
		file, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open consent file: %w", err)
		}
		defer file.Close()
		source = file
	}

	var doc consentDocument
	if err := json.NewDecoder(source).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode consent: %w", err)
	}
	consent := doc.Consent
	if doc.ValidUntil != "" {
		validUntil, err := utils.ParseDate(doc.ValidUntil)
		if err != nil {
			return nil, fmt.Errorf("invalid validUntil: %w", err)
		}
		consent.ValidUntil = validUntil
	}
	return &consent, nil
}
