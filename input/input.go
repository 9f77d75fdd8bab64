// Package input parses the credential and domain source files.
package input

import (
	"fmt"
	"os"
	"strings"

	"github.com/use-agent/stackscout/models"
)

// ParseCredentials splits text into blocks separated by one or more blank
// (or whitespace-only) lines and reads identity from the first line and
// secret from the second. Blocks with fewer than two lines are dropped.
func ParseCredentials(text string) []models.Credential {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	creds := []models.Credential{}
	var block []string
	flush := func() {
		if len(block) >= 2 {
			creds = append(creds, models.Credential{Identity: block[0], Secret: block[1]})
		}
		block = block[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()
	return creds
}

// ParseDomains returns one trimmed domain per non-blank line, in order.
func ParseDomains(text string) []string {
	lines := strings.Split(text, "\n")
	domains := make([]string, 0, len(lines))
	for _, line := range lines {
		if d := strings.TrimSpace(line); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

// LoadCredentials reads and parses the credentials file.
// A missing, unreadable or empty source is an INPUT_LOAD_FAILED error.
func LoadCredentials(path string) ([]models.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewCampaignError(models.ErrCodeInputLoad,
			fmt.Sprintf("read credentials file %q", path), err)
	}
	creds := ParseCredentials(string(data))
	if len(creds) == 0 {
		return nil, models.NewCampaignError(models.ErrCodeInputLoad,
			fmt.Sprintf("no usable credentials in %q", path), nil)
	}
	return creds, nil
}

// LoadDomains reads and parses the domain list file.
func LoadDomains(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewCampaignError(models.ErrCodeInputLoad,
			fmt.Sprintf("read domains file %q", path), err)
	}
	domains := ParseDomains(string(data))
	if len(domains) == 0 {
		return nil, models.NewCampaignError(models.ErrCodeInputLoad,
			fmt.Sprintf("no domains in %q", path), nil)
	}
	return domains, nil
}
