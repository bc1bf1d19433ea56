package launcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// JVMArgs is the user's ordered JVM flag list.
type JVMArgs struct {
	tokens []string
}

// ParseJVMArgs splits the stored java_args string on whitespace.
func ParseJVMArgs(s string) *JVMArgs {
	return &JVMArgs{tokens: strings.Fields(s)}
}

func (a *JVMArgs) Tokens() []string {
	return append([]string(nil), a.tokens...)
}

func (a *JVMArgs) String() string {
	return strings.Join(a.tokens, " ")
}

// flagKey identifies tokens that override each other.
func flagKey(token string) string {
	for _, prefix := range []string{"-Xmx", "-Xms", "-Xss", "-Xmn"} {
		if strings.HasPrefix(token, prefix) {
			return prefix
		}
	}
	if strings.HasPrefix(token, "-D") {
		name, _, _ := strings.Cut(token, "=")
		return name
	}
	if rest, ok := strings.CutPrefix(token, "-XX:"); ok {
		rest = strings.TrimLeft(rest, "+-")
		name, _, _ := strings.Cut(rest, "=")
		return "-XX:" + name
	}
	return token
}

// Set adds token, dropping any earlier token for the same flag.
func (a *JVMArgs) Set(token string) {
	a.Remove(flagKey(token))
	a.tokens = append(a.tokens, token)
}

// Remove drops every token whose flag key is key.
func (a *JVMArgs) Remove(key string) {
	kept := a.tokens[:0]
	for _, t := range a.tokens {
		if flagKey(t) != key {
			kept = append(kept, t)
		}
	}
	a.tokens = kept
}

// SetMemory replaces the heap flags with -Xmx<gb>G -Xms<gb>G at the front.
func (a *JVMArgs) SetMemory(gb int) error {
	if gb < 1 || gb > 32 {
		return fmt.Errorf("memory must be between 1 and 32 GB, got %d", gb)
	}
	a.Remove("-Xmx")
	a.Remove("-Xms")
	a.tokens = append([]string{fmt.Sprintf("-Xmx%dG", gb), fmt.Sprintf("-Xms%dG", gb)}, a.tokens...)
	return nil
}

var xmxRe = regexp.MustCompile(`^-Xmx(\d+)([GgMm])$`)

// MaxMemoryGB returns the -Xmx value in whole gigabytes, or 0 when unset.
func (a *JVMArgs) MaxMemoryGB() int {
	gb := 0
	for _, t := range a.tokens {
		m := xmxRe.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if strings.EqualFold(m[2], "m") {
			n /= 1024
		}
		gb = n
	}
	return gb
}
