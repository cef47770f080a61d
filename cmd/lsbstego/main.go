package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	stego "github.com/yyyoichi/stego_lsb"
	"github.com/yyyoichi/stego_lsb/imageio"
	"github.com/yyyoichi/stego_lsb/internal/keys"
	"github.com/yyyoichi/stego_lsb/internal/quality"
)

const usage = `usage: lsbstego <command> [flags]

commands:
  encode    -in cover.png -out steg.png (-msg text | -file payload)
  decode    -in steg.png [-out payload]
  capacity  -in cover.png

Authenticated mode is used when STEGO_KEY (hex) or STEGO_PASSPHRASE is set.
STEGO_CIPHER or -cipher selects aes, chacha, xchacha or ascon.
Variables are also read from a .env file in the working directory.
`

var cipherAliases = map[string]string{
	"aes":     stego.AES256GCM,
	"chacha":  stego.ChaCha20Poly1305,
	"xchacha": stego.XChaCha20Poly1305,
	"ascon":   stego.Ascon128,
}

type config struct {
	in, out    string
	msg, file  string
	channels   string
	offset     int
	stride     int
	zstdLevel  int
	golay      bool
	golaySeed  int64
	cipherName string
}

func (c *config) register(fs *flag.FlagSet) {
	fs.StringVar(&c.in, "in", "", "input image")
	fs.StringVar(&c.out, "out", "", "output file")
	fs.StringVar(&c.msg, "msg", "", "message to hide (encode)")
	fs.StringVar(&c.file, "file", "", "file to hide (encode)")
	fs.StringVar(&c.channels, "channels", "r", "channels carrying bits: r, g, b or a combination")
	fs.IntVar(&c.offset, "offset", 0, "channel slots to skip before the first bit")
	fs.IntVar(&c.stride, "stride", 1, "channel slots between consecutive bits")
	fs.IntVar(&c.zstdLevel, "zstd", 0, "zstd level 1-22 for payload compression, 0 disables")
	fs.BoolVar(&c.golay, "golay", false, "protect the frame with a Golay code")
	fs.Int64Var(&c.golaySeed, "golay-seed", stego.DefaultGolaySeed, "shuffle seed for -golay")
	fs.StringVar(&c.cipherName, "cipher", os.Getenv("STEGO_CIPHER"), "aes, chacha, xchacha or ascon")
}

func (c *config) options() ([]stego.Option, error) {
	set, ok := stego.ParseChannelSet(c.channels)
	if !ok {
		return nil, fmt.Errorf("invalid -channels %q", c.channels)
	}
	opts := []stego.Option{
		stego.WithChannels(set),
		stego.WithOffset(c.offset),
		stego.WithStride(c.stride),
	}
	if c.zstdLevel != 0 {
		opts = append(opts, stego.WithCompression(c.zstdLevel))
	}
	if c.golay {
		opts = append(opts, stego.WithGolay(c.golaySeed))
	}
	return opts, nil
}

// mode builds the framing mode from the environment. Keys never come from
// flags so they stay out of shell history.
func (c *config) mode() (stego.Mode, error) {
	hexKey, pass := os.Getenv("STEGO_KEY"), os.Getenv("STEGO_PASSPHRASE")
	if hexKey == "" && pass == "" {
		return stego.Plain(), nil
	}

	name := strings.ToLower(c.cipherName)
	if name == "" {
		name = "aes"
	}
	if full, ok := cipherAliases[name]; ok {
		name = full
	}
	size, err := stego.CipherKeySize(name)
	if err != nil {
		return nil, err
	}

	var master []byte
	if hexKey != "" {
		master, err = keys.ParseHex(hexKey)
	} else {
		master, err = keys.FromPassphrase(pass, keys.DefaultSalt)
	}
	if err != nil {
		return nil, err
	}
	key, err := keys.NewDeriver(master, keys.DefaultSalt).Derive(name, size)
	if err != nil {
		return nil, err
	}
	aead, err := stego.NewCipher(name, key)
	if err != nil {
		return nil, err
	}
	log.Printf("Authenticated mode: %s\n", name)
	return stego.Authenticated(aead), nil
}

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cmd := os.Args[1]
	var cfg config
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfg.register(fs)
	_ = fs.Parse(os.Args[2:])
	if cfg.in == "" {
		log.Fatal("-in is required")
	}

	opts, err := cfg.options()
	if err != nil {
		log.Fatal(err)
	}
	s, err := stego.New(opts...)
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	mode, err := cfg.mode()
	if err != nil {
		log.Fatalf("Failed to set up cipher: %v", err)
	}

	switch cmd {
	case "encode":
		err = encode(s, mode, cfg)
	case "decode":
		err = decode(s, mode, cfg)
	case "capacity":
		err = capacity(s, mode, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func encode(s *stego.Stego, mode stego.Mode, cfg config) error {
	if cfg.out == "" {
		return fmt.Errorf("-out is required")
	}
	var payload []byte
	switch {
	case cfg.file != "":
		b, err := os.ReadFile(cfg.file)
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
		payload = b
	case cfg.msg != "":
		payload = []byte(cfg.msg)
	default:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
		payload = b
	}

	cover, err := imageio.Load(cfg.in)
	if err != nil {
		return err
	}
	carrier, err := s.Encode(stego.NewCarrier(cover), payload, mode)
	if err != nil {
		return err
	}
	if err := imageio.Save(cfg.out, carrier); err != nil {
		return err
	}

	report, err := quality.Compare(cover, carrier)
	if err != nil {
		return err
	}
	log.Printf("Embedded %d bytes into %s (capacity %d bytes)\n",
		len(payload), cfg.out, s.Capacity(carrier.Bounds(), mode))
	log.Printf("Distortion: %s\n", report)
	return nil
}

func decode(s *stego.Stego, mode stego.Mode, cfg config) error {
	img, err := imageio.Load(cfg.in)
	if err != nil {
		return err
	}
	payload, err := s.Decode(img, mode)
	if err != nil {
		return err
	}
	if cfg.out == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(cfg.out, payload, 0o600); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	log.Printf("Recovered %d bytes into %s\n", len(payload), cfg.out)
	return nil
}

func capacity(s *stego.Stego, mode stego.Mode, cfg config) error {
	img, err := imageio.Load(cfg.in)
	if err != nil {
		return err
	}
	fmt.Println(s.Capacity(img.Bounds(), mode))
	return nil
}
