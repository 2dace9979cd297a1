package models

type Image struct {
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
	Meta     *Meta  `json:"meta,omitempty"`
}

type ImageRows struct {
	Rows []Image `json:"rows"`
}
