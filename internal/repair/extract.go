package repair

import (
	"log/slog"
	"regexp"
	"strings"
)

// fenceBlockPattern enumerates fenced blocks in order, capturing the tag and
// the body. Matching whole blocks left to right keeps a closing fence from
// being misread as the opening of the next block.
var fenceBlockPattern = regexp.MustCompile("(?s)```(\\w*)[ \\t]*\\n?(.*?)```")

// ExtractCode pulls the candidate source out of a raw oracle response.
//
// Priority:
//  1. the first block fenced with the expected tag (a bare ``` fence also
//     qualifies, matching responses that drop the tag);
//  2. the first fenced block with any tag, logged as degraded extraction;
//  3. the whole trimmed response, logged as no block found.
//
// Extraction never fails; garbage in means garbage out, and the next
// execution is the arbiter.
func ExtractCode(log *slog.Logger, raw, fenceTag string) string {
	blocks := fenceBlockPattern.FindAllStringSubmatch(raw, -1)
	for _, m := range blocks {
		if m[1] == "" || strings.EqualFold(m[1], fenceTag) {
			return strings.TrimSpace(m[2])
		}
	}

	if len(blocks) > 0 {
		log.Warn("expected fence tag not found, using first fenced block", "tag", fenceTag)
		return strings.TrimSpace(blocks[0][2])
	}

	log.Warn("no fenced block in oracle response, using raw text")
	return strings.TrimSpace(raw)
}
