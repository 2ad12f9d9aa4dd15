package app

import (
	"fmt"

	"github.com/jwulff/iotconsole/internal/api"
	"github.com/jwulff/iotconsole/internal/route"

	tea "github.com/charmbracelet/bubbletea"
)

// NewPage builds the page addressed by a navigation path.
func NewPage(path string, backend api.Backend, opts Options) (tea.Model, error) {
	params := route.Parse(path)
	switch page := route.PageFor(path); page {
	case route.PageDevices:
		return NewDeviceListPage(params, backend, opts), nil
	case route.PageDeviceDetail:
		return NewDeviceDetailPage(params, backend, opts), nil
	case route.PageAppTTS:
		return NewAppTTSPage(params, backend, opts), nil
	default:
		return nil, fmt.Errorf("no page for path %q", path)
	}
}
