package pgbulk

import (
	"errors"
	"fmt"
	"time"
)

// LoadConfig contains all parameters needed for a CLI load operation.
type LoadConfig struct {
	// RecordsPath is the file the records are read from (.json, .yaml, .csv, .xlsx, optionally .gz/.zst)
	RecordsPath string

	// ModelPath is the YAML model file describing tables and columns
	ModelPath string

	// Table is the target table name, matched against the model
	Table string

	// Schema qualifies the table in the COPY command
	Schema string

	// Connection holds the resolved connection parameters
	Connection *ConnectionConfig

	// Timeout is the global timeout for the entire load
	Timeout time.Duration

	// DryRun resolves the model and prints the COPY command without connecting
	DryRun bool

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.RecordsPath == "" {
		errs = append(errs, fmt.Errorf("RecordsPath is required: %w", ErrInvalidConfig))
	}
	if c.ModelPath == "" {
		errs = append(errs, fmt.Errorf("ModelPath is required: %w", ErrInvalidConfig))
	}
	if c.Table == "" {
		errs = append(errs, fmt.Errorf("Table is required: %w", ErrInvalidConfig))
	}
	if c.Connection == nil && !c.DryRun {
		errs = append(errs, fmt.Errorf("Connection is required: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS IAM parameters (AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL instance connection name "project:region:instance" (AuthMethodGoogleIAM)
	GoogleInstance string

	// Azure Entra ID parameters (AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used,
	// otherwise the DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Entra ID
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a CLI/config spelling to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra":
		return AuthMethodAzureEntraID, nil
	}
	return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
}
