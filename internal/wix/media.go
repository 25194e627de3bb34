package wix

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	imageURIPrefix = "wix:image://v1/"
	mediaBaseURL   = "https://static.wixstatic.com/media/"
)

// ImageFromURI decodes the media URIs Wix puts on cart lines, e.g.
// wix:image://v1/11062b_abc~mv2.jpg/shirt.jpg#originWidth=640&originHeight=480.
// Plain http(s) URLs pass through with unknown dimensions. The file name, when
// present, becomes the alt text.
func ImageFromURI(uri string) (MediaImage, bool) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return MediaImage{}, false
	}
	if !strings.HasPrefix(uri, imageURIPrefix) {
		if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
			return MediaImage{URL: uri}, true
		}
		return MediaImage{}, false
	}

	rest := strings.TrimPrefix(uri, imageURIPrefix)
	rest, fragment, _ := strings.Cut(rest, "#")
	id, filename, _ := strings.Cut(rest, "/")
	if id == "" {
		return MediaImage{}, false
	}

	img := MediaImage{URL: mediaBaseURL + id}
	if name, err := url.PathUnescape(filename); err == nil && name != "" {
		img.AltText = &name
	}
	if params, err := url.ParseQuery(fragment); err == nil {
		img.Width, _ = strconv.Atoi(params.Get("originWidth"))
		img.Height, _ = strconv.Atoi(params.Get("originHeight"))
	}
	return img, true
}
