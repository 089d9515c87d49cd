package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "xdao.co/basetools/base32"
	_ "xdao.co/basetools/base58"
	"xdao.co/basetools/base64url"
	"xdao.co/basetools/cid"
	"xdao.co/basetools/codec"
	"xdao.co/basetools/codecrpc"
	"xdao.co/basetools/fetch"
	"xdao.co/basetools/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "encode":
		return cmdEncode(args[1:], in, out, errOut)
	case "decode":
		return cmdDecode(args[1:], in, out, errOut)
	case "codecs":
		return cmdCodecs(out)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "fetch":
		return cmdFetch(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "basetools: Base58/Base32/Base64URL codecs and compact CIDs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  basetools codecs")
	fmt.Fprintln(w, "  basetools encode --codec <name> [--server <addr>] [<file>]")
	fmt.Fprintln(w, "  basetools decode --codec <name> [--raw] [--server <addr>] [<text>]")
	fmt.Fprintln(w, "  basetools cid encode (--hash-hex <hex> | --hash <base64url>) --size <n> [--type <n>] [--hash-type <n>]")
	fmt.Fprintln(w, "  basetools cid decode <cid>")
	fmt.Fprintln(w, "  basetools cid ipfs <cid>")
	fmt.Fprintln(w, "  basetools fetch --codec <name> <url>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - encode reads stdin when no file is given; decode reads stdin when no text is given")
	fmt.Fprintln(w, "  - decode writes raw bytes to stdout")
	fmt.Fprintln(w, "  - decode strips a legacy prefix (z, b/B, u) unless --raw is set")
	fmt.Fprintln(w, "  - --server sends the request to a basetoolsd instance")
	fmt.Fprintln(w, "  - cid decode prints the identifier as a JSON request")
}

func cmdCodecs(out io.Writer) int {
	for _, c := range codec.List() {
		_, _ = fmt.Fprintf(out, "%s\t%c\t%s\n", c.Name, c.Prefix, c.Description)
	}
	return 0
}

func cmdEncode(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var codecName string
	var server string
	fs.StringVar(&codecName, "codec", "base58btc", "Codec name (see 'basetools codecs')")
	fs.StringVar(&server, "server", "", "basetoolsd address")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: basetools encode --codec <name> [--server <addr>] [<file>]")
		return 2
	}

	var b []byte
	var err error
	if fs.NArg() == 1 {
		b, err = os.ReadFile(fs.Arg(0))
	} else {
		b, err = io.ReadAll(in)
	}
	if err != nil {
		fmt.Fprintf(errOut, "read: %v\n", err)
		return 1
	}

	var s string
	if server != "" {
		s, err = withClient(server, func(ctx context.Context, c *codecrpc.Client) (string, error) {
			return c.Encode(ctx, codecName, b)
		})
	} else {
		s, err = encodeLocal(codecName, b)
	}
	if err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, s)
	return 0
}

func encodeLocal(codecName string, b []byte) (string, error) {
	c, err := codec.Lookup(codecName)
	if err != nil {
		return "", err
	}
	return c.Encode(b), nil
}

func cmdDecode(args []string, in io.Reader, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var codecName string
	var server string
	var raw bool
	fs.StringVar(&codecName, "codec", "base58btc", "Codec name (see 'basetools codecs')")
	fs.StringVar(&server, "server", "", "basetoolsd address")
	fs.BoolVar(&raw, "raw", false, "Do not strip a legacy prefix")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(errOut, "usage: basetools decode --codec <name> [--raw] [--server <addr>] [<text>]")
		return 2
	}
	if raw && server != "" {
		fmt.Fprintln(errOut, "--raw is not supported with --server")
		return 2
	}

	text := fs.Arg(0)
	if fs.NArg() == 0 {
		b, err := io.ReadAll(in)
		if err != nil {
			fmt.Fprintf(errOut, "read: %v\n", err)
			return 1
		}
		text = strings.TrimSpace(string(b))
	}

	var b []byte
	var err error
	if server != "" {
		b, err = withClient(server, func(ctx context.Context, c *codecrpc.Client) ([]byte, error) {
			return c.Decode(ctx, codecName, text)
		})
	} else {
		b, err = decodeLocal(codecName, text, raw)
	}
	if err != nil {
		fmt.Fprintf(errOut, "decode: %v\n", err)
		return 1
	}
	_, _ = out.Write(b)
	return 0
}

func decodeLocal(codecName, text string, raw bool) ([]byte, error) {
	c, err := codec.Lookup(codecName)
	if err != nil {
		return nil, err
	}
	if raw {
		return c.DecodeRaw(text)
	}
	return c.Decode(text)
}

func withClient[T any](server string, call func(context.Context, *codecrpc.Client) (T, error)) (T, error) {
	var zero T
	client, err := codecrpc.Dial(server, codecrpc.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		return zero, err
	}
	defer client.Close()
	client.Timeout = 30 * time.Second
	return call(context.Background(), client)
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: basetools cid <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: encode, decode, ipfs")
		return 2
	}
	switch args[0] {
	case "encode":
		return cmdCIDEncode(args[1:], out, errOut)
	case "decode", "ipfs":
		fs := flag.NewFlagSet("cid "+args[0], flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintf(errOut, "usage: basetools cid %s <cid>\n", args[0])
			return 2
		}
		c, err := cid.Decode(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "invalid cid: %v\n", err)
			return 1
		}
		if args[0] == "ipfs" {
			id, err := c.IPFS()
			if err != nil {
				fmt.Fprintf(errOut, "ipfs: %v\n", err)
				return 1
			}
			_, _ = fmt.Fprintln(out, id.String())
			return 0
		}
		b, err := json.Marshal(cid.RequestFor(c))
		if err != nil {
			fmt.Fprintf(errOut, "marshal: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintln(out, string(b))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown cid subcommand: %s\n", args[0])
		return 2
	}
}

func cmdCIDEncode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid encode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var hashHex string
	var hashB64 string
	var size int64
	var typ uint
	var hashType uint
	fs.StringVar(&hashHex, "hash-hex", "", "Hash digest as hex")
	fs.StringVar(&hashB64, "hash", "", "Hash digest as base64url")
	fs.Int64Var(&size, "size", 0, "Content size in bytes (required)")
	fs.UintVar(&typ, "type", uint(cid.TypeRaw), "CID type byte")
	fs.UintVar(&hashType, "hash-type", uint(cid.HashBlake3), "Hash type byte")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 0 || typ > 0xff || hashType > 0xff {
		fmt.Fprintln(errOut, "usage: basetools cid encode (--hash-hex <hex> | --hash <base64url>) --size <n> [--type <n>] [--hash-type <n>]")
		return 2
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var r cid.Request
	switch {
	case set["hash-hex"] && set["hash"]:
		fmt.Fprintln(errOut, "--hash-hex and --hash are mutually exclusive")
		return 2
	case set["hash-hex"]:
		b, err := hex.DecodeString(hashHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --hash-hex: %v\n", err)
			return 1
		}
		h := base64url.Bytes(b)
		r.Hash = &h
	case set["hash"]:
		b, err := base64url.DecodeRaw(hashB64)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --hash: %v\n", err)
			return 1
		}
		h := base64url.Bytes(b)
		r.Hash = &h
	}
	if set["size"] {
		r.Size = &size
	}
	t := cid.Type(typ)
	ht := cid.HashType(hashType)
	r.Type, r.HashType = &t, &ht

	s, err := r.Encode()
	if err != nil {
		fmt.Fprintf(errOut, "cid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, s)
	return 0
}

func cmdFetch(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var codecName string
	var timeout time.Duration
	fs.StringVar(&codecName, "codec", "base64url", "Codec name (see 'basetools codecs')")
	fs.DurationVar(&timeout, "timeout", time.Minute, "Download timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: basetools fetch --codec <name> <url>")
		return 2
	}
	c, err := codec.Lookup(codecName)
	if err != nil {
		fmt.Fprintf(errOut, "fetch: %v\n", err)
		return 2
	}

	log, err := logging.New("warning", errOut)
	if err != nil {
		fmt.Fprintf(errOut, "fetch: %v\n", err)
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	f := &fetch.Fetcher{Log: log}
	b := f.Download(ctx, fs.Arg(0))
	if b == nil {
		return 1
	}
	_, _ = fmt.Fprintln(out, c.Encode(b))
	return 0
}
