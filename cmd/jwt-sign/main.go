package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/es256"
	"github.com/oarkflow/es256/token"
)

const version = "1.0.0"

type Config struct {
	FilePath        string
	ClaimsJSON      string
	KeyID           string
	TTL             time.Duration
	Verify          bool
	Verbose         bool
	ShowVersion     bool
	CopyToClipboard bool
}

// fileConfig is the YAML document jwt-sign consumes: the signing key as a
// private JWK plus a default claim set.
type fileConfig struct {
	Key    token.JWK      `yaml:"key"`
	Claims map[string]any `yaml:"claims"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("jwt-sign v%s\n", version)
		os.Exit(0)
	}

	if err := validateConfig(config); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := runSign(config); err != nil {
		log.Fatalf("Signing failed: %v", err)
	}
}

func parseFlags() *Config {
	config := &Config{}

	flag.StringVar(&config.FilePath, "file", "", "Path to YAML config with the private JWK and claims")
	flag.StringVar(&config.FilePath, "f", "", "Path to YAML config with the private JWK and claims (shorthand)")
	flag.StringVar(&config.ClaimsJSON, "claims", "", "Inline JSON claims merged over the config claims")
	flag.StringVar(&config.KeyID, "kid", "", "Key identifier stamped into the token header")
	flag.DurationVar(&config.TTL, "ttl", 0, "Token lifetime; when set, iat/nbf/exp/jti claims are stamped")
	flag.BoolVar(&config.Verify, "verify", true, "Self-verify the token against the embedded public key")
	flag.BoolVar(&config.Verbose, "verbose", true, "Enable verbose output")
	flag.BoolVar(&config.Verbose, "v", true, "Enable verbose output (shorthand)")
	flag.BoolVar(&config.CopyToClipboard, "copy", false, "Copy the signed token to clipboard")
	flag.BoolVar(&config.CopyToClipboard, "c", false, "Copy the signed token to clipboard (shorthand)")
	showVersion := flag.Bool("version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jwt-sign v%s - Sign compact ES256 JWTs from a key file\n\n", version)
		fmt.Fprintf(os.Stderr, "USAGE:\n")
		fmt.Fprintf(os.Stderr, "  jwt-sign -f <key.yaml> [options]\n\n")
		fmt.Fprintf(os.Stderr, "EXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  jwt-sign -f key.yaml\n")
		fmt.Fprintf(os.Stderr, "  jwt-sign -f key.yaml -claims '{\"sub\":\"user-12345\"}' -ttl 15m\n")
		fmt.Fprintf(os.Stderr, "  jwt-sign -f key.yaml -kid primary -copy\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	config.ShowVersion = *showVersion
	return config
}

func validateConfig(config *Config) error {
	if config.FilePath == "" {
		return fmt.Errorf("config file is required (-f flag)")
	}
	if _, err := os.Stat(config.FilePath); err != nil {
		return fmt.Errorf("cannot read config file '%s': %w", config.FilePath, err)
	}
	if config.TTL < 0 {
		return fmt.Errorf("ttl must not be negative")
	}
	return nil
}

func runSign(config *Config) error {
	raw, err := os.ReadFile(config.FilePath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	scalar, err := token.JWKToScalar(&fc.Key)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	claims := fc.Claims
	if claims == nil {
		claims = make(map[string]any)
	}
	if config.ClaimsJSON != "" {
		extra := make(map[string]any)
		if err := json.Unmarshal([]byte(config.ClaimsJSON), &extra); err != nil {
			return fmt.Errorf("parse -claims: %w", err)
		}
		for k, v := range extra {
			claims[k] = v
		}
	}

	kid := config.KeyID
	if kid == "" {
		kid = fc.Key.Kid
	}

	var signed string
	if config.TTL > 0 {
		key, err := es256.NewSecretKey(scalar)
		if err != nil {
			return err
		}
		gen, err := token.NewSigningGenerator(key, config.TTL, token.WithGeneratorKeyID(kid))
		if err != nil {
			return err
		}
		signed, err = gen.Generate(claims)
		if err != nil {
			return err
		}
	} else {
		tok := token.NewToken(kid)
		if err := tok.RegisterClaims(claims); err != nil {
			return err
		}
		signed, err = tok.Sign(scalar)
		if err != nil {
			return err
		}
	}

	fmt.Println(signed)

	if config.Verify {
		jwk, err := token.ScalarToJWK(scalar)
		if err != nil {
			return err
		}
		point, err := token.JWKToPoint(jwk.Public(), false)
		if err != nil {
			return err
		}
		ok, err := token.VerifyToken(signed, point)
		if err != nil {
			return fmt.Errorf("self-verify: %w", err)
		}
		if !ok {
			return fmt.Errorf("self-verify: signature did not verify")
		}
		if config.Verbose {
			fmt.Println("✓ signature verified against derived public key")
		}
	}

	if config.CopyToClipboard {
		if err := clipboard.WriteAll(signed); err != nil {
			if config.Verbose {
				fmt.Printf("Warning: Unable to copy token to clipboard: %v\n", err)
			}
		} else if config.Verbose {
			fmt.Println("✓ Token copied to clipboard")
		}
	}

	return nil
}
