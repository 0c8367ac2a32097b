package persistence

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/fabriziosalmi/repolizer/internal/coeerr"
)

// Result summarizes one repair pass: Valid counts every line kept in the
// rewritten stream, repaired ones included; Repaired counts the kept lines
// that needed a conservative fix-up; Unrepairable and Duplicates count the
// quarantined lines.
type Result struct {
	Valid          int
	Repaired       int
	Unrepairable   int
	Duplicates     int
	BackupPath     string
	QuarantinePath string
}

var trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)

type keptLine struct {
	raw      string
	repaired bool
}

type quarantinedLine struct {
	lineNo int
	reason string
	raw    string
}

// Repair scans the output stream at path, parses each line independently,
// and rewrites path to contain only valid and repaired lines, moving
// unrepairable and duplicate lines to a sibling ".corrupted" quarantine
// file with their origin line numbers and an error message.
//
// It only attempts two conservative fix-ups: trailing commas before a
// closing brace/bracket, and a narrow unescaped-internal-quote
// substitution. Anything else is quarantined, never silently dropped.
// Exact-duplicate records (same repository id and timestamp) are also
// quarantined rather than kept twice.
func Repair(path string) (Result, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return Result{}, coeerr.NewPersistenceError("read", path, err)
	}

	backupPath := fmt.Sprintf("%s.bak.%d", path, time.Now().UnixNano())
	if err := os.WriteFile(backupPath, original, 0o644); err != nil {
		return Result{}, coeerr.NewPersistenceError("backup", path, err)
	}

	kept, quarantined, err := partitionLines(original)
	if err != nil {
		return Result{}, coeerr.NewPersistenceError("scan", path, err)
	}

	var out bytes.Buffer
	for _, k := range kept {
		out.WriteString(k.raw)
		out.WriteByte('\n')
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return Result{}, coeerr.NewPersistenceError("rewrite", path, err)
	}

	result := Result{BackupPath: backupPath}
	for _, k := range kept {
		result.Valid++
		if k.repaired {
			result.Repaired++
		}
	}

	if len(quarantined) > 0 {
		quarantinePath := path + ".corrupted"
		var q bytes.Buffer
		for _, ql := range quarantined {
			fmt.Fprintf(&q, "# line %d: %s\n", ql.lineNo, ql.reason)
			q.WriteString(ql.raw)
			q.WriteByte('\n')
		}
		if err := appendFile(quarantinePath, q.Bytes()); err != nil {
			return Result{}, coeerr.NewPersistenceError("quarantine", quarantinePath, err)
		}
		result.QuarantinePath = quarantinePath
	}

	for _, ql := range quarantined {
		if isDuplicateReason(ql.reason) {
			result.Duplicates++
		} else {
			result.Unrepairable++
		}
	}

	return result, nil
}

// partitionLines classifies every non-empty line of data into the lines
// to keep (valid, possibly repaired, possibly deduped) and the lines to
// quarantine.
func partitionLines(data []byte) ([]keptLine, []quarantinedLine, error) {
	var kept []keptLine
	var quarantined []quarantinedLine
	seen := make(map[string]int) // dedup key -> first line number that kept it

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}

		fixedLine, repaired, parseErr := normalizeLine(line)
		if parseErr != nil {
			quarantined = append(quarantined, quarantinedLine{lineNo: lineNo, reason: parseErr.Error(), raw: line})
			continue
		}

		if key, dupErr := dedupKey(fixedLine); dupErr == nil {
			if firstLine, exists := seen[key]; exists {
				quarantined = append(quarantined, quarantinedLine{
					lineNo: lineNo,
					reason: fmt.Sprintf("duplicate of line %d", firstLine),
					raw:    line,
				})
				continue
			}
			seen[key] = lineNo
		}

		kept = append(kept, keptLine{raw: fixedLine, repaired: repaired})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return kept, quarantined, nil
}

// normalizeLine returns line unchanged if it already parses as valid
// JSON. Otherwise it attempts the two conservative fix-ups in turn; if
// one produces valid JSON, it returns the fixed line and repaired=true.
// If neither succeeds, it returns the original parse error.
func normalizeLine(line string) (fixed string, repaired bool, err error) {
	var probe map[string]any
	if err := json.Unmarshal([]byte(line), &probe); err == nil {
		return line, false, nil
	} else {
		firstErr := err

		if candidate := trailingCommaPattern.ReplaceAllString(line, "$1"); candidate != line {
			if json.Unmarshal([]byte(candidate), &probe) == nil {
				return candidate, true, nil
			}
		}

		if candidate, changed := escapeStrayInternalQuotes(line); changed {
			if json.Unmarshal([]byte(candidate), &probe) == nil {
				return candidate, true, nil
			}
		}

		return "", false, firstErr
	}
}

// escapeStrayInternalQuotes is a narrow, conservative fix for the common
// case of an unescaped quote inside a string value that otherwise has a
// structure-preserving substitution: a quote immediately preceded and
// followed by a letter/digit (never adjacent to a JSON structural
// character) is almost certainly a literal quote that should have been
// escaped, rather than a string terminator.
func escapeStrayInternalQuotes(line string) (string, bool) {
	runes := []rune(line)
	changed := false
	for i := 1; i < len(runes)-1; i++ {
		if runes[i] != '"' {
			continue
		}
		if runes[i-1] == '\\' {
			continue
		}
		if isWordRune(runes[i-1]) && isWordRune(runes[i+1]) {
			runes = append(runes[:i], append([]rune{'\\'}, runes[i:]...)...)
			i++ // skip the inserted backslash
			changed = true
		}
	}
	if !changed {
		return line, false
	}
	return string(runes), true
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// dedupKey derives the duplicate-detection key from a valid record line:
// repository.id + timestamp.
func dedupKey(line string) (string, error) {
	var envelope struct {
		Repository struct {
			ID string `json:"id"`
		} `json:"repository"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(line), &envelope); err != nil {
		return "", err
	}
	if envelope.Repository.ID == "" {
		return "", fmt.Errorf("no repository id")
	}
	return envelope.Repository.ID + "|" + envelope.Timestamp, nil
}

func isDuplicateReason(reason string) bool {
	return len(reason) >= 9 && reason[:9] == "duplicate"
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}
