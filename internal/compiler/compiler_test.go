package compiler

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileToString(t *testing.T, src string) (string, int) {
	t.Helper()
	c := New("test.c", []byte(src))
	var buf bytes.Buffer
	errs := c.Compile(&buf)
	return buf.String(), errs
}

var labelDefRe = regexp.MustCompile(`(?m)^(_\d{8}):`)
var jumpRefRe = regexp.MustCompile(`(?:jmp|je|jne) (_\d{8})`)

func TestEmptyFunctionBody(t *testing.T) {
	out, errs := compileToString(t, "int f() {}")
	require.Zero(t, errs)
	assert.Contains(t, out, "f:\n")
	assert.Contains(t, out, "push rbp\n")
	assert.Contains(t, out, "pop rbp\n")
	assert.Contains(t, out, "ret\n")
}

func TestGlobalsSectionExcludesFunctions(t *testing.T) {
	out, errs := compileToString(t, "int x; int y = 5; int f() {}")
	require.Zero(t, errs)
	dataSection := out[strings.Index(out, "section '.data'"):]
	assert.Contains(t, dataSection, "x dq 0\n")
	assert.Contains(t, dataSection, "y dq 5\n")
	assert.NotContains(t, dataSection, "f dq")
}

func TestEveryLabelDefinedExactlyOnce(t *testing.T) {
	out, _ := compileToString(t, `
int add(int a, int b) { return a+b; }
int main() {
	int i;
	for (i=0; i<3; i=i+1) {
		if (i==1) { i = i; } else { i = i; }
	}
	return add(2,3);
}`)
	counts := map[string]int{}
	for _, m := range labelDefRe.FindAllStringSubmatch(out, -1) {
		counts[m[1]]++
	}
	for l, n := range counts {
		assert.Equalf(t, 1, n, "label %s defined %d times", l, n)
	}
}

func TestZeroArgCallReservesShadowSpaceOnly(t *testing.T) {
	out, errs := compileToString(t, `int main() { getchar(); return 0; }`)
	require.Zero(t, errs)
	idx := strings.Index(out, "sub rsp, 32")
	require.GreaterOrEqual(t, idx, 0)
	// No argument-trampoline jumps should appear between the shadow-space
	// reservation and the call itself for a zero-argument call.
	callIdx := strings.Index(out[idx:], "call qword [rax]")
	require.Greater(t, callIdx, 0)
	segment := out[idx : idx+callIdx]
	assert.NotContains(t, segment, "jmp")
}

func TestFourArgCallUsesAllRegisters(t *testing.T) {
	out, errs := compileToString(t, `
int f(int a, int b, int c, int d) { return a; }
int main() { return f(1,2,3,4); }`)
	require.Zero(t, errs)
	assert.Contains(t, out, "mov rcx, qword [rsp+0]\n")
	assert.Contains(t, out, "mov rdx, qword [rsp+8]\n")
	assert.Contains(t, out, "mov r8, qword [rsp+16]\n")
	assert.Contains(t, out, "mov r9, qword [rsp+24]\n")
}

func TestNestedCallPreservesOuterCallee(t *testing.T) {
	out, errs := compileToString(t, `
int g(int x) { return x; }
int f(int x, int y) { return x; }
int main() { return f(g(1), 2); }`)
	require.Zero(t, errs)
	assert.Equal(t, 2, strings.Count(out, "call qword [rax]"))
	// f's address is pushed before its arguments are evaluated and read
	// back from beneath its two pushed arguments for the call.
	assert.Contains(t, out, "lea rax, [f]\nsub rsp, 32\npush rax\n")
	assert.Contains(t, out, "lea rax, [rsp+16]\ncall qword [rax]\n")
}

func TestLocalShadowsGlobal(t *testing.T) {
	out, errs := compileToString(t, `
int x;
int main() { int x; x = 1; return x; }`)
	require.Zero(t, errs)
	// Both references to x inside main must resolve to the local frame
	// slot, not the global: the lvalue assignment takes its address with
	// "lea rax, [rbp+...]" and the later read loads with "mov rax,
	// [rbp+...]"; neither should fall back to the bare global symbol.
	assert.Contains(t, out, "lea rax, [rbp+")
	assert.Contains(t, out, "mov rax, [rbp+")
	assert.NotContains(t, out, "[x]")
}

func TestHexEscapeDecodesRealValue(t *testing.T) {
	out, errs := compileToString(t, `int main() { return '\x41'; }`)
	require.Zero(t, errs)
	assert.Contains(t, out, "mov rax, 65\n")
}

func TestStringConcatenation(t *testing.T) {
	out, errs := compileToString(t, `int main() { return 0; } int unused() { "ab" "cd"; return 0; }`)
	require.Zero(t, errs)
	assert.Contains(t, out, "'a','b','c','d', 0")
}

func TestUndeclaredIdentifierIsAnError(t *testing.T) {
	_, errs := compileToString(t, `int main() { return nope; }`)
	assert.Equal(t, 1, errs)
}

func TestMainAlwaysCallsExitProcess(t *testing.T) {
	out, errs := compileToString(t, `int main() { return 42; }`)
	require.Zero(t, errs)
	assert.Contains(t, out, "mov rcx, 0\ncall [ExitProcess]\n")
}

func TestEveryReferencedLabelIsDefined(t *testing.T) {
	out, _ := compileToString(t, `
int main() {
	int i;
	i = 0;
	while (i < 3) { i = i + 1; }
	return i > 0 ? 1 : 0;
}`)
	defs := map[string]bool{}
	for _, m := range labelDefRe.FindAllStringSubmatch(out, -1) {
		defs[m[1]] = true
	}
	for _, m := range jumpRefRe.FindAllStringSubmatch(out, -1) {
		assert.Truef(t, defs[m[1]], "label %s jumped to but never defined", m[1])
	}
}
