package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/atotto/clipboard"

	"github.com/oarkflow/es256/token"
)

const version = "1.0.0"

type Config struct {
	ScalarInput     string
	PointInput      string
	JWKPath         string
	KeyID           string
	Compressed      bool
	Verbose         bool
	ShowVersion     bool
	CopyToClipboard bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("jwk-convert v%s\n", version)
		os.Exit(0)
	}

	if err := validateConfig(config); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := runConvert(config); err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.ScalarInput, "scalar", "", "Private scalar (hex or base64url) to wrap into a private JWK")
	flag.StringVar(&config.PointInput, "point", "", "Public point (hex or base64url, SEC 1 encoded) to wrap into a public JWK")
	flag.StringVar(&config.JWKPath, "jwk", "", "Path to a JWK JSON file to unwrap into raw key material")
	flag.StringVar(&config.KeyID, "kid", "", "Key identifier stamped into the produced JWK")
	flag.BoolVar(&config.Compressed, "compressed", false, "Emit the compressed 33-byte point when unwrapping")
	flag.BoolVar(&config.Verbose, "verbose", true, "Enable verbose output")
	flag.BoolVar(&config.Verbose, "v", true, "Enable verbose output (shorthand)")
	flag.BoolVar(&config.CopyToClipboard, "copy", false, "Copy the result to clipboard")
	flag.BoolVar(&config.CopyToClipboard, "c", false, "Copy the result to clipboard (shorthand)")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jwk-convert v%s - Convert between raw P-256 key material and JWKs\n\n", version)
		fmt.Fprintf(os.Stderr, "USAGE:\n")
		fmt.Fprintf(os.Stderr, "  jwk-convert -scalar <hex|base64url> [-kid id]\n")
		fmt.Fprintf(os.Stderr, "  jwk-convert -point <hex|base64url> [-kid id]\n")
		fmt.Fprintf(os.Stderr, "  jwk-convert -jwk key.json [-compressed]\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	config.ShowVersion = *showVersion
	return config
}

func validateConfig(config *Config) error {
	set := 0
	if config.ScalarInput != "" {
		set++
	}
	if config.PointInput != "" {
		set++
	}
	if config.JWKPath != "" {
		set++
	}
	if set == 0 {
		return fmt.Errorf("one of -scalar, -point or -jwk is required")
	}
	if set > 1 {
		return fmt.Errorf("-scalar, -point and -jwk are mutually exclusive")
	}
	if config.JWKPath != "" {
		if _, err := os.Stat(config.JWKPath); err != nil {
			return fmt.Errorf("cannot read JWK file '%s': %w", config.JWKPath, err)
		}
	}
	return nil
}

func runConvert(config *Config) error {
	var result string

	switch {
	case config.ScalarInput != "":
		scalar, err := decodeMaterial(config.ScalarInput)
		if err != nil {
			return fmt.Errorf("decode scalar: %w", err)
		}
		jwk, err := token.ScalarToJWK(scalar, config.KeyID)
		if err != nil {
			return err
		}
		result, err = renderJWK(jwk)
		if err != nil {
			return err
		}

	case config.PointInput != "":
		point, err := decodeMaterial(config.PointInput)
		if err != nil {
			return fmt.Errorf("decode point: %w", err)
		}
		jwk, err := token.PointToJWK(point, config.KeyID)
		if err != nil {
			return err
		}
		result, err = renderJWK(jwk)
		if err != nil {
			return err
		}

	default:
		raw, err := os.ReadFile(config.JWKPath)
		if err != nil {
			return fmt.Errorf("read JWK: %w", err)
		}
		jwk := &token.JWK{}
		if err := json.Unmarshal(raw, jwk); err != nil {
			return fmt.Errorf("parse JWK: %w", err)
		}
		point, err := token.JWKToPoint(jwk, config.Compressed)
		if err != nil {
			return err
		}
		result = hex.EncodeToString(point)
		if jwk.IsPrivate() {
			scalar, err := token.JWKToScalar(jwk)
			if err != nil {
				return err
			}
			result += "\n" + hex.EncodeToString(scalar)
		}
	}

	fmt.Println(result)

	if config.CopyToClipboard {
		if err := clipboard.WriteAll(result); err != nil {
			if config.Verbose {
				fmt.Printf("Warning: Unable to copy result to clipboard: %v\n", err)
			}
		} else if config.Verbose {
			fmt.Println("✓ Result copied to clipboard")
		}
	}

	return nil
}

// decodeMaterial accepts either hex or unpadded base64url key material.
func decodeMaterial(s string) ([]byte, error) {
	if raw, err := hex.DecodeString(s); err == nil {
		return raw, nil
	}
	return token.DecodeBase64URL(s)
}

func renderJWK(jwk *token.JWK) (string, error) {
	out, err := json.MarshalIndent(jwk, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
