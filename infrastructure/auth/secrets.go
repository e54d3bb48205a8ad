package auth

import (
	"fmt"
	"os"

	"github.com/ylexus/google-issue-193814298/infrastructure/photos"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// Scopes requested by the program: the Drive app data folder and the Photos library
var Scopes = []string{
	drive.DriveAppdataScope,
	photos.LibraryScope,
}

// LoadClientConfig reads an installed-app client secret file.
// With no scopes given, Scopes is used.
func LoadClientConfig(path string, scopes ...string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	if len(scopes) == 0 {
		scopes = Scopes
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file: %w", err)
	}

	return config, nil
}
