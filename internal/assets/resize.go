package assets

import "strings"

// resizeFor returns the canonical output size for texture classes
// the game ships at inconsistent resolutions. Sizes follow the
// in-game presentation of each kind.
func resizeFor(name, kind string) (w, h int, ok bool) {
	switch kind {
	case "supportcard":
		switch {
		case strings.HasPrefix(name, "support_card_s"):
			return 200, 200, true
		case strings.HasPrefix(name, "support_thumb"):
			return 450, 600, true
		case strings.HasPrefix(name, "tex_support_card"):
			return 450, 600, true
		}

	case "gachaselect":
		if strings.Contains(name, "cursor") {
			return 0, 0, false
		}

		if strings.HasPrefix(name, "img_bnr_gacha") {
			return 512, 182, true
		}
	}

	return 0, 0, false
}
