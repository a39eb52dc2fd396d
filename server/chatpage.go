package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nox-hq/parley/assist"
	"github.com/nox-hq/parley/config"
)

//go:embed ui/chat.html
var uiFS embed.FS

// chatPagePlaceholder is the line in the template replaced with page data.
const chatPagePlaceholder = "const DATA = typeof __PARLEY_DATA__ !== 'undefined' ? __PARLEY_DATA__ : {};"

// chatPageData is the JSON structure injected into the chat page.
type chatPageData struct {
	Version        string         `json:"version"`
	Models         []config.Model `json:"models"`
	TimeoutSeconds int            `json:"timeout_seconds"`
}

// GenerateChatHTML renders the browser chat page with version, model data and
// the client timeout injected. A non-positive timeout uses assist.DefaultTimeout.
func GenerateChatHTML(version string, models []config.Model, timeout time.Duration) (string, error) {
	tmplBytes, err := uiFS.ReadFile("ui/chat.html")
	if err != nil {
		return "", fmt.Errorf("reading chat template: %w", err)
	}

	if timeout <= 0 {
		timeout = assist.DefaultTimeout
	}
	dataJSON, err := json.Marshal(chatPageData{
		Version:        version,
		Models:         models,
		TimeoutSeconds: int(math.Ceil(timeout.Seconds())),
	})
	if err != nil {
		return "", fmt.Errorf("marshalling chat page data: %w", err)
	}

	html := strings.Replace(string(tmplBytes), chatPagePlaceholder, "const DATA = "+string(dataJSON)+";", 1)
	return html, nil
}
