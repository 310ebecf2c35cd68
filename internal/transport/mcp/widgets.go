package mcp

import (
	"net/url"
	"strings"
)

// Имена виджетов (путь /widget/<name>).
const (
	WidgetPing           = "ping"
	WidgetMicro          = "micro"
	WidgetVehicleResults = "vehicle-results"
)

// WidgetLinks — построение абсолютных ссылок на виджеты.
type WidgetLinks struct {
	Host string
	Diag bool
}

// URL — <host>/widget/<name>?rid=<runID>[&diag=1]. forceDiag включает
// диагностику независимо от настройки.
func (w WidgetLinks) URL(name, runID string, forceDiag bool) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(w.Host, "/"))
	b.WriteString("/widget/")
	b.WriteString(name)
	b.WriteString("?rid=")
	b.WriteString(url.QueryEscape(runID))
	if w.Diag || forceDiag {
		b.WriteString("&diag=1")
	}
	return b.String()
}
