package models

import "strings"

// Meta — служебный блок МойСклад с гиперссылкой на сущность
type Meta struct {
	Href         string `json:"href,omitempty"`
	Type         string `json:"type,omitempty"`
	MediaType    string `json:"mediaType,omitempty"`
	Size         int    `json:"size,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
	DownloadHref string `json:"downloadHref,omitempty"`
}

// EntityID извлекает ID сущности из href: последний сегмент пути без query string
func (m *Meta) EntityID() string {
	if m == nil || m.Href == "" {
		return ""
	}
	parts := strings.Split(m.Href, "/")
	last := parts[len(parts)-1]
	if i := strings.Index(last, "?"); i >= 0 {
		last = last[:i]
	}
	return last
}
