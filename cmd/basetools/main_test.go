package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gocid "github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"lukechampine.com/blake3"

	"xdao.co/basetools/base58"
	"xdao.co/basetools/base64url"
	"xdao.co/basetools/cid"
	"xdao.co/basetools/codecrpc"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	if code, _, _ := runCLI(t, ""); code != 2 {
		t.Fatalf("no args: exit %d, want 2", code)
	}
	if code, _, errOut := runCLI(t, "", "bogus"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("bogus: exit %d stderr %q", code, errOut)
	}
	if code, out, _ := runCLI(t, "", "help"); code != 0 || !strings.Contains(out, "basetools encode") {
		t.Fatalf("help: exit %d stdout %q", code, out)
	}
}

func TestRun_Codecs(t *testing.T) {
	code, out, _ := runCLI(t, "", "codecs")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	for _, want := range []string{"base32\tb\t", "base58btc\tz\t", "base64url\tu\t"} {
		if !strings.Contains(out, want) {
			t.Fatalf("codecs output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_EncodeDecode(t *testing.T) {
	code, out, errOut := runCLI(t, "Hello World!", "encode", "--codec", "base58btc")
	if code != 0 {
		t.Fatalf("encode: exit %d: %s", code, errOut)
	}
	if out != "2NEpo7TZRRrLZSi2U\n" {
		t.Fatalf("encode = %q", out)
	}

	code, out, errOut = runCLI(t, "", "decode", "--codec", "base58btc", "z2NEpo7TZRRrLZSi2U")
	if code != 0 || out != "Hello World!" {
		t.Fatalf("decode: exit %d stdout %q stderr %q", code, out, errOut)
	}

	code, out, _ = runCLI(t, "mzxw6ytboi\n", "decode", "--codec", "base32")
	if code != 0 || out != "foobar" {
		t.Fatalf("decode stdin: exit %d stdout %q", code, out)
	}
}

func TestRun_EncodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.bin")
	if err := os.WriteFile(path, []byte{0xfb, 0xff}, 0o600); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCLI(t, "", "encode", "--codec", "base64url", path)
	if code != 0 || out != "-_8\n" {
		t.Fatalf("exit %d stdout %q stderr %q", code, out, errOut)
	}
}

func TestRun_DecodeRaw(t *testing.T) {
	// "z" is a full Base58 encoding of 57; Decode would strip it as a prefix.
	code, out, _ := runCLI(t, "", "decode", "--codec", "base58btc", "z")
	if code != 0 || out != "" {
		t.Fatalf("decode: exit %d stdout %q", code, out)
	}
	code, out, _ = runCLI(t, "", "decode", "--codec", "base58btc", "--raw", "z")
	if code != 0 || out != string([]byte{57}) {
		t.Fatalf("decode --raw: exit %d stdout %q", code, out)
	}
}

func TestRun_DecodeErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "", "decode", "--codec", "base58btc", "10")
	if code != 1 || !strings.Contains(errOut, "invalid character '0' at offset 1") {
		t.Fatalf("exit %d stderr %q", code, errOut)
	}
	code, _, errOut = runCLI(t, "", "decode", "--codec", "base36", "abc")
	if code != 1 || !strings.Contains(errOut, "base36") {
		t.Fatalf("unknown codec: exit %d stderr %q", code, errOut)
	}
	if code, _, _ := runCLI(t, "", "decode", "a", "b"); code != 2 {
		t.Fatalf("two args: exit %d, want 2", code)
	}
}

func TestRun_CID(t *testing.T) {
	sum := blake3.Sum256([]byte("content"))
	hash := sum[:]

	code, out, errOut := runCLI(t, "", "cid", "encode", "--hash-hex", hex.EncodeToString(hash), "--size", "7")
	if code != 0 {
		t.Fatalf("cid encode: exit %d: %s", code, errOut)
	}
	s := strings.TrimSpace(out)
	want, err := cid.Encode(hash, 7)
	if err != nil {
		t.Fatal(err)
	}
	if s != want {
		t.Fatalf("cid encode = %q, want %q", s, want)
	}

	code, out, _ = runCLI(t, "", "cid", "encode", "--hash", base64url.Encode(hash), "--size", "7")
	if code != 0 || strings.TrimSpace(out) != want {
		t.Fatalf("cid encode --hash: exit %d stdout %q", code, out)
	}

	code, out, errOut = runCLI(t, "", "cid", "decode", s)
	if code != 0 {
		t.Fatalf("cid decode: exit %d: %s", code, errOut)
	}
	var r cid.Request
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("cid decode output: %v", err)
	}
	if r.Size == nil || *r.Size != 7 || r.Type == nil || *r.Type != cid.TypeRaw {
		t.Fatalf("cid decode = %s", out)
	}

	code, out, errOut = runCLI(t, "", "cid", "ipfs", s)
	if code != 0 {
		t.Fatalf("cid ipfs: exit %d: %s", code, errOut)
	}
	id, err := gocid.Decode(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("cid ipfs output %q: %v", out, err)
	}
	if id.Prefix().Codec != gocid.Raw {
		t.Fatalf("cid ipfs codec = %#x", id.Prefix().Codec)
	}
}

func TestRun_CIDErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "", "cid", "encode", "--hash-hex", "aabb")
	if code != 1 || !strings.Contains(errOut, "size required") {
		t.Fatalf("missing size: exit %d stderr %q", code, errOut)
	}
	code, _, errOut = runCLI(t, "", "cid", "encode", "--size", "1")
	if code != 1 || !strings.Contains(errOut, "hash must be a byte buffer") {
		t.Fatalf("missing hash: exit %d stderr %q", code, errOut)
	}
	if code, _, _ := runCLI(t, "", "cid", "encode", "--hash-hex", "aa", "--hash", "qg", "--size", "1"); code != 2 {
		t.Fatalf("both hashes: exit %d, want 2", code)
	}
	if code, _, _ := runCLI(t, "", "cid", "encode", "--hash-hex", "aa", "--size", "1", "--type", "256"); code != 2 {
		t.Fatalf("type out of range: exit %d, want 2", code)
	}
	code, _, errOut = runCLI(t, "", "cid", "decode", base58.Encode([]byte{0x26, 0x1f}))
	if code != 1 || !strings.Contains(errOut, "invalid cid") {
		t.Fatalf("short cid: exit %d stderr %q", code, errOut)
	}
	if code, _, _ := runCLI(t, "", "cid", "frob"); code != 2 {
		t.Fatalf("unknown subcommand: exit %d, want 2", code)
	}
}

func TestRun_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ok" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte{0xfb, 0xff})
	}))
	defer srv.Close()

	code, out, errOut := runCLI(t, "", "fetch", "--codec", "base64url", srv.URL+"/ok")
	if code != 0 || out != "-_8\n" {
		t.Fatalf("fetch: exit %d stdout %q stderr %q", code, out, errOut)
	}
	code, _, errOut = runCLI(t, "", "fetch", srv.URL+"/missing")
	if code != 1 || !strings.Contains(errOut, "download failed") {
		t.Fatalf("fetch missing: exit %d stderr %q", code, errOut)
	}
}

func TestRun_Server(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := grpc.NewServer()
	if err := codecrpc.Register(s, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	go func() { _ = s.Serve(lis) }()
	defer s.Stop()
	addr := lis.Addr().String()

	code, out, errOut := runCLI(t, "foobar", "encode", "--codec", "base32", "--server", addr)
	if code != 0 || out != "mzxw6ytboi\n" {
		t.Fatalf("remote encode: exit %d stdout %q stderr %q", code, out, errOut)
	}
	code, out, errOut = runCLI(t, "", "decode", "--codec", "base32", "--server", addr, "bmzxw6ytboi")
	if code != 0 || out != "foobar" {
		t.Fatalf("remote decode: exit %d stdout %q stderr %q", code, out, errOut)
	}
	code, _, errOut = runCLI(t, "", "decode", "--codec", "base32", "--server", addr, "!")
	if code != 1 || !strings.Contains(errOut, "base32") {
		t.Fatalf("remote decode error: exit %d stderr %q", code, errOut)
	}
}
