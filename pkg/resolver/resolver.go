package resolver

import (
	"fmt"
	"strings"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// typePhysicalObject is the linked-art type of the primary subject node.
const typePhysicalObject = "HumanMadeObject"

// maxDescriptions caps the collected description list.
const maxDescriptions = 20

// ExtractFacts resolves a linked-data document into a fact record. Every
// step tolerates missing or oddly shaped fields; when the primary subject
// node cannot be located at all the result is an empty record, never an
// error.
func ExtractFacts(doc map[string]any) models.FactRecord {
	nodes := normalize(doc)
	if len(nodes) == 0 {
		return models.FactRecord{}
	}

	idMap := buildIDMap(nodes)
	subject := findSubject(nodes)
	if subject == nil {
		return models.FactRecord{}
	}

	record := models.FactRecord{
		ClassifiedAs: collectLabels(subject["classified_as"], idMap),
		Materials:    collectLabels(subject["made_of"], idMap),
		Dimensions:   extractDimensions(subject, idMap),
		Descriptions: extractDescriptions(subject, idMap),
	}

	if title := extractTitle(subject, idMap); title != "" {
		record.Title = &title
	}

	artist, date := extractProduction(subject, idMap)
	if artist != "" {
		record.Artist = &artist
	}
	if date != "" {
		record.Date = &date
	}

	return record
}

// findSubject locates the primary subject: the first physical-object node,
// falling back to the first node when none is typed as such.
func findSubject(nodes []map[string]any) map[string]any {
	for _, node := range nodes {
		if hasType(node, typePhysicalObject) {
			return node
		}
	}
	if len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// extractTitle returns the first resolvable name-typed identifier, else
// any label the identifier node carries.
func extractTitle(subject map[string]any, idMap map[string]map[string]any) string {
	for _, ident := range asList(subject["identified_by"]) {
		node := asNode(resolveRef(ident, idMap))
		if node == nil || !hasType(node, "Name") {
			continue
		}
		if content, ok := node["content"].(string); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
		if lab := label(node); lab != "" {
			return lab
		}
	}
	return ""
}

// extractProduction navigates the produced_by relation for the producing
// agent and the production date. Readable identified date strings win over
// machine timestamps; a timestamp's start wins over its end.
func extractProduction(subject map[string]any, idMap map[string]map[string]any) (artist, date string) {
	production := asNode(resolveRef(subject["produced_by"], idMap))
	if production == nil {
		return "", ""
	}

	if names := collectLabels(production["carried_out_by"], idMap); len(names) > 0 {
		artist = names[0]
	}

	timespan := asNode(resolveRef(production["timespan"], idMap))
	if timespan == nil {
		return artist, ""
	}

	for _, ident := range asList(timespan["identified_by"]) {
		if lab := labelOf(ident, idMap); lab != "" {
			return artist, lab
		}
	}

	if begin, ok := timespan["begin_of_the_begin"].(string); ok && begin != "" {
		return artist, yearOf(begin)
	}
	if end, ok := timespan["end_of_the_end"].(string); ok && end != "" {
		return artist, yearOf(end)
	}
	return artist, ""
}

func yearOf(timestamp string) string {
	if len(timestamp) >= 4 {
		return timestamp[:4]
	}
	return timestamp
}

// extractDimensions renders each dimension entry as "{type label}: {value}
// {unit}" when a type label resolves, falling back to any generic label.
func extractDimensions(subject map[string]any, idMap map[string]map[string]any) []string {
	var out []string
	for _, dim := range asList(subject["dimension"]) {
		node := asNode(resolveRef(dim, idMap))
		if node == nil {
			continue
		}

		value := node["value"]
		if value == nil {
			if lab := label(node); lab != "" {
				out = append(out, lab)
			}
			continue
		}

		var b strings.Builder
		if types := collectLabels(node["classified_as"], idMap); len(types) > 0 {
			b.WriteString(types[0])
			b.WriteString(": ")
		}
		b.WriteString(formatValue(value))
		if unit := labelOf(node["unit"], idMap); unit != "" {
			b.WriteByte(' ')
			b.WriteString(unit)
		}
		out = append(out, b.String())
	}
	return out
}

func formatValue(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

// extractDescriptions collects textual notes from two independent
// relations: the explicit referred_to_by list, and the subject_of tree.
// Museum-website descriptions nest three part-levels deep, so the tree
// walk goes that far. Results are deduplicated in first-seen order and
// capped.
func extractDescriptions(subject map[string]any, idMap map[string]map[string]any) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(node map[string]any) {
		if node == nil || !hasType(node, "LinguisticObject") {
			return
		}
		content, _ := node["content"].(string)
		content = strings.TrimSpace(content)
		if content == "" {
			content = label(node)
		}
		if content != "" && !seen[content] {
			seen[content] = true
			out = append(out, content)
		}
	}

	for _, note := range asList(subject["referred_to_by"]) {
		add(asNode(resolveRef(note, idMap)))
	}

	for _, subj := range asList(subject["subject_of"]) {
		level0 := asNode(resolveRef(subj, idMap))
		if level0 == nil {
			continue
		}
		add(level0)
		for _, part1 := range asList(level0["part"]) {
			level1 := asNode(resolveRef(part1, idMap))
			if level1 == nil {
				continue
			}
			add(level1)
			for _, part2 := range asList(level1["part"]) {
				level2 := asNode(resolveRef(part2, idMap))
				if level2 == nil {
					continue
				}
				add(level2)
				for _, part3 := range asList(level2["part"]) {
					add(asNode(resolveRef(part3, idMap)))
				}
			}
		}
	}

	if len(out) > maxDescriptions {
		out = out[:maxDescriptions]
	}
	return out
}
