package research

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aisleworks/vendor-research/internal/model"
	"github.com/aisleworks/vendor-research/internal/store"
	"github.com/aisleworks/vendor-research/internal/taxonomy"
)

// RankRelevantVendors runs the second-pass AI match: for every to-do
// item already flagged for research, ask the generator which stored
// vendors of that category fit the task, and union the selected vendor
// IDs into the user's collection.
//
// Safe to invoke repeatedly: selections are re-applied with set
// semantics. A malformed AI response or a failed call contributes zero
// vendors for that item and the loop continues.
func (p *Pipeline) RankRelevantVendors(ctx context.Context, userID string) ([]model.VendorRecord, error) {
	list, err := p.store.GetToDoList(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "research: load to-do list")
	}

	log := zap.L().With(zap.String("user_id", userID))

	var matched []model.VendorRecord
	var ids []string
	for _, section := range list.Sections {
		for _, item := range section.Items {
			if !item.AISent {
				continue
			}

			cat, ok := p.registry.Classify(item.Task)
			if !ok {
				continue
			}

			vendors, err := p.store.ListVendorsByType(ctx, cat.Name)
			if err != nil {
				log.Warn("vendor lookup failed for ranking",
					zap.String("category", cat.Name),
					zap.Error(err),
				)
				continue
			}
			if len(vendors) == 0 {
				continue
			}

			raw, err := p.generator.Generate(ctx, rankPrompt(item.Task, cat, vendors))
			if err != nil {
				log.Warn("ranking call failed",
					zap.String("category", cat.Name),
					zap.Error(err),
				)
				continue
			}

			byName := make(map[string]model.VendorRecord, len(vendors))
			for _, v := range vendors {
				byName[v.Name] = v
			}
			for _, name := range parseSelectedNames(raw) {
				if v, ok := byName[name]; ok {
					matched = append(matched, v)
					ids = append(ids, v.ID)
				}
			}
		}
	}

	if len(ids) > 0 {
		if err := p.store.AddUserVendors(ctx, userID, ids); err != nil {
			return nil, eris.Wrap(err, "research: attach ranked vendors")
		}
	}

	return matched, nil
}

const noSuitablePhrase = "no suitable vendors"

// rankPrompt builds the selection prompt from a task and the candidate
// vendor digests.
func rankPrompt(task string, cat *taxonomy.Category, vendors []model.VendorRecord) string {
	var sb strings.Builder
	sb.WriteString("A couple planning their wedding has this task: \"")
	sb.WriteString(task)
	sb.WriteString("\"\n\nCandidate ")
	sb.WriteString(cat.Name)
	sb.WriteString(" vendors:\n")
	for _, v := range vendors {
		sb.WriteString("- ")
		sb.WriteString(vendorDigest(v, cat))
		sb.WriteString("\n")
	}
	sb.WriteString("\nSelect the vendors best suited to the task. ")
	sb.WriteString("Respond with ONLY a JSON array of the selected vendor names, exactly as written above. ")
	sb.WriteString("If none fit, respond with exactly: No suitable vendors for this task.")
	return sb.String()
}

// vendorDigest renders one candidate line: the name plus the category's
// descriptive fields, falling back to the about text.
func vendorDigest(v model.VendorRecord, cat *taxonomy.Category) string {
	parts := []string{v.Name}
	if len(cat.DigestFields) > 0 {
		for _, f := range cat.DigestFields {
			if val := v.Attributes[f]; val != "" {
				parts = append(parts, f+": "+val)
			}
		}
	}
	if len(parts) == 1 && v.About != "" {
		parts = append(parts, v.About)
	}
	return strings.Join(parts, "; ")
}

// parseSelectedNames extracts the vendor names from a raw generator
// response. Returns nil for "no suitable vendors" replies and for
// anything that cannot be parsed as a name array.
func parseSelectedNames(raw string) []string {
	if strings.Contains(strings.ToLower(raw), noSuitablePhrase) {
		return nil
	}

	text := stripFences(raw)

	var names []string
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &names); err == nil {
			return names
		}
	}

	// Some models wrap the array in an object.
	var wrapped struct {
		Vendors []string `json:"vendors"`
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &wrapped); err == nil && wrapped.Vendors != nil {
			return wrapped.Vendors
		}
	}

	zap.L().Debug("unparseable ranking response", zap.String("response", raw))
	return nil
}

// stripFences removes a markdown code-fence wrapper if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			if idx := strings.LastIndex(text, "```"); idx >= 0 {
				text = text[:idx]
			}
			break
		}
	}
	return strings.TrimSpace(text)
}
