// Package anchors implements parsing and rendering of trust anchor files:
// the out-of-band bootstrap documents naming the verification keys a root
// domain is trusted with.
package anchors

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sort"
	"strings"
)

const (
	Preamble  = "-----BEGIN NAMETREE TRUST ANCHORS-----"
	Postamble = "-----END NAMETREE TRUST ANCHORS-----"
)

type Anchors struct {
	Meta map[string]string
	Keys []string
}

// Parse parses a trust anchor file from bytes. The format is deliberately
// strict: no BOM, no CR line endings, no trailing whitespace.
func Parse(data []byte) (*Anchors, error) {
	if bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return nil, errors.New("BOM not allowed")
	}
	if bytes.Contains(data, []byte("\r")) {
		return nil, errors.New("CR line endings not allowed")
	}
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t') {
			return nil, errors.New("trailing whitespace forbidden")
		}
	}

	if !bytes.HasPrefix(data, []byte(Preamble)) {
		return nil, errors.New("missing trust anchor preamble")
	}
	if !bytes.HasSuffix(bytes.TrimSpace(data), []byte(Postamble)) {
		return nil, errors.New("missing trust anchor postamble")
	}

	sections := map[string]bool{"META": true, "KEYS": true}
	reader := bufio.NewReader(bytes.NewReader(data))
	var currSection string
	meta := make(map[string]string)
	var anchorKeys []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if sections[line] {
			currSection = line
			if err != nil {
				break
			}
			continue
		}
		if currSection == "META" && strings.Contains(line, ": ") {
			kv := strings.SplitN(line, ": ", 2)
			meta[kv[0]] = kv[1]
		}
		if currSection == "KEYS" && strings.HasPrefix(line, "Key: ") {
			key := strings.TrimPrefix(line, "Key: ")
			if key == "" {
				return nil, errors.New("empty Key value")
			}
			anchorKeys = append(anchorKeys, key)
		}
		if err != nil {
			break
		}
	}
	if len(anchorKeys) == 0 {
		return nil, errors.New("no trust anchor keys")
	}
	return &Anchors{Meta: meta, Keys: anchorKeys}, nil
}

// Render produces the canonical byte form of a. META lines and keys are
// sorted so the output is deterministic and content-addressable.
func Render(a *Anchors) []byte {
	var sb strings.Builder
	sb.WriteString(Preamble)
	sb.WriteString("\n")

	sb.WriteString("META\n")
	metaKeys := make([]string, 0, len(a.Meta))
	for k := range a.Meta {
		metaKeys = append(metaKeys, k)
	}
	sort.Strings(metaKeys)
	for _, k := range metaKeys {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(a.Meta[k])
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("KEYS\n")
	anchorKeys := append([]string(nil), a.Keys...)
	sort.Strings(anchorKeys)
	for _, k := range anchorKeys {
		sb.WriteString("Key: ")
		sb.WriteString(k)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(Postamble)
	sb.WriteString("\n")
	return []byte(sb.String())
}
