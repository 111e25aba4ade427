package entities

import "strings"

const (
	unreleasedHeading = "## [Unreleased]"
	h2Prefix          = "## ["
	h3Prefix          = "### "
	bulletPrefix      = "- "

	ChangelogSectionChanged  = "### Changed"
	ChangelogSectionSecurity = "### Security"
)

// MirrorChangesetIntoChangelog inserts bullet entries into the
// "## [Unreleased]" section of a Keep-a-Changelog formatted string, under
// the given subsection ("### Changed" for routine updates, "### Security"
// for security updates).
//
// Behaviour:
//   - If "## [Unreleased]" is missing, the content is returned unchanged.
//   - If the subsection already exists under Unreleased, the entries are
//     appended after the last bullet line in that subsection.
//   - Otherwise a new subsection is created right after the
//     "## [Unreleased]" line.
func MirrorChangesetIntoChangelog(content, section string, entries []string) string {
	if len(entries) == 0 {
		return content
	}
	if !strings.HasPrefix(section, h3Prefix) {
		section = ChangelogSectionChanged
	}

	lines := strings.Split(content, "\n")

	unreleasedIdx := findUnreleasedIndex(lines)
	if unreleasedIdx < 0 {
		return content // no Unreleased section
	}

	// Find the boundary of the Unreleased section (next ## [ heading or EOF).
	nextH2Idx := findNextH2Index(lines, unreleasedIdx)

	sectionIdx := findSubsectionIndex(lines, section, unreleasedIdx, nextH2Idx)

	if sectionIdx >= 0 {
		insertAfter := findLastBullet(lines, sectionIdx, nextH2Idx)
		lines = insertLines(lines, insertAfter+1, entries)
	} else {
		block := []string{"", section, ""}
		block = append(block, entries...)
		lines = insertLines(lines, unreleasedIdx+1, block)
	}

	return strings.Join(lines, "\n")
}

func findUnreleasedIndex(lines []string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == unreleasedHeading {
			return i
		}
	}
	return -1
}

func findNextH2Index(lines []string, startIdx int) int {
	for i := startIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), h2Prefix) {
			return i
		}
	}
	return len(lines)
}

func findSubsectionIndex(lines []string, section string, startIdx, endIdx int) int {
	for i := startIdx + 1; i < endIdx; i++ {
		if strings.TrimSpace(lines[i]) == section {
			return i
		}
	}
	return -1
}

// findLastBullet returns the index of the last bullet line in the
// subsection, starting from sectionIdx.
func findLastBullet(lines []string, sectionIdx, endIdx int) int {
	insertAfter := sectionIdx
	for i := sectionIdx + 1; i < endIdx; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue // skip blank lines between bullets
		}
		if strings.HasPrefix(trimmed, bulletPrefix) {
			insertAfter = i
			continue
		}
		// Hit a different subsection heading or non-bullet content.
		break
	}
	return insertAfter
}

// insertLines inserts extra lines into slice at the given index.
func insertLines(lines []string, at int, extra []string) []string {
	result := make([]string, 0, len(lines)+len(extra))
	result = append(result, lines[:at]...)
	result = append(result, extra...)
	result = append(result, lines[at:]...)
	return result
}
