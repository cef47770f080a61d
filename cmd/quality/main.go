package main

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/yyyoichi/httpcache-go"
	stego "github.com/yyyoichi/stego_lsb"
	"github.com/yyyoichi/stego_lsb/imageio"
	"github.com/yyyoichi/stego_lsb/internal/quality"
	"golang.org/x/image/draw"
)

// throttle spaces outgoing requests at least interval apart. Waiting callers
// give up when their request context ends.
type throttle struct {
	client   *http.Client
	interval time.Duration

	mu   sync.Mutex
	next time.Time
}

func newThrottle(client *http.Client, interval time.Duration) *throttle {
	return &throttle{client: client, interval: interval}
}

// reserve books the next free slot and returns how long to wait for it.
func (t *throttle) reserve() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	wait := max(t.next.Sub(now), 0)
	t.next = now.Add(wait + t.interval)
	return wait
}

func (t *throttle) Do(req *http.Request) (*http.Response, error) {
	if wait := t.reserve(); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
	log.Println("Making request to:", req.URL.String())
	return t.client.Do(req)
}

var client = httpcache.Client{
	Client:  newThrottle(http.DefaultClient, 250*time.Millisecond),
	Cache:   httpcache.NewStorageCache("/tmp/lsbstego_http_cache/"),
	Handler: httpcache.NewDefaultHandler(),
}

type testParams struct {
	Cover    string
	Width    int
	Height   int
	Channels stego.ChannelSet
	Mode     string
	Fill     float64
	Payload  int
	Capacity int
}

func (p testParams) String() string {
	return fmt.Sprintf("Cover=%s Size=%dx%d Channels=%s Mode=%s Fill=%.2f Payload=%d/%d",
		p.Cover, p.Width, p.Height, p.Channels, p.Mode, p.Fill, p.Payload, p.Capacity)
}

type testResult struct {
	testParams
	Success bool
	Report  quality.Report
	Elapsed time.Duration
}

type cover struct {
	name string
	img  image.Image
}

func main() {
	// Parse command-line arguments
	in := flag.String("in", "", "comma separated cover images")
	urlFile := flag.String("urls", "", "file listing cover image URLs, one per line")
	width := flag.Int("w", 640, "width covers are resized to")
	height := flag.Int("h", 360, "height covers are resized to")
	dbPath := flag.String("db", "", "SQLite file results are appended to")
	chartPath := flag.String("chart", "", "HTML file the PSNR chart is written to")
	flag.Parse()

	var store *resultStore
	if *dbPath != "" {
		var err error
		store, err = openStore(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
		log.Printf("Database initialized: %s\n", *dbPath)
	}

	covers, err := loadCovers(*in, *urlFile, *width, *height)
	if err != nil {
		log.Fatalf("Failed to load covers: %v", err)
	}

	key := make([]byte, 32)
	_, _ = rand.Read(key)
	aead, err := stego.NewCipher(stego.ChaCha20Poly1305, key)
	if err != nil {
		log.Fatalf("Failed to create cipher: %v", err)
	}
	modes := map[string]stego.Mode{
		"plain":  stego.Plain(),
		"chacha": stego.Authenticated(aead),
	}
	channelSets := []stego.ChannelSet{stego.RedOnly, stego.Red | stego.Green, stego.RGB}
	fills := []float64{0.01, 0.1, 0.25, 0.5, 1.0}

	log.Printf("Starting quality evaluation with %d covers\n", len(covers))
	log.Printf("Total test cases per cover: %d (channel sets) x %d (modes) x %d (fill ratios) = %d\n",
		len(channelSets), len(modes), len(fills), len(channelSets)*len(modes)*len(fills))

	var results []testResult
	successCount := 0
	totalTests := 0
	for i, c := range covers {
		log.Printf("\n[%d/%d] Testing cover: %s\n", i+1, len(covers), c.name)
		for _, set := range channelSets {
			s, err := stego.New(stego.WithChannels(set))
			if err != nil {
				log.Fatalf("Invalid channel set %s: %v", set, err)
			}
			for _, modeName := range []string{"plain", "chacha"} {
				mode := modes[modeName]
				capacity := s.Capacity(c.img.Bounds(), mode)
				for _, fill := range fills {
					params := testParams{
						Cover:    c.name,
						Width:    c.img.Bounds().Dx(),
						Height:   c.img.Bounds().Dy(),
						Channels: set,
						Mode:     modeName,
						Fill:     fill,
						Payload:  int(float64(capacity) * fill),
						Capacity: capacity,
					}
					totalTests++
					result := testStego(s, mode, c.img, params)
					if result.Success {
						successCount++
					}
					if store != nil {
						if err := store.insertResult(result); err != nil {
							log.Printf("Failed to store result: %v", err)
						}
					}
					results = append(results, result)
				}
			}
		}
	}

	log.Printf("\n=== Results ===\n")
	log.Printf("Total tests: %d\n", totalTests)
	log.Printf("Successful: %d (%.2f%%)\n", successCount, float64(successCount)/float64(totalTests)*100)
	log.Printf("Failed: %d (%.2f%%)\n", totalTests-successCount, float64(totalTests-successCount)/float64(totalTests)*100)

	if *chartPath != "" {
		if err := renderChart(results, *chartPath); err != nil {
			log.Printf("Failed to render chart: %v", err)
		} else {
			log.Printf("Chart written to %s\n", *chartPath)
		}
	}
}

func loadCovers(in, urlFile string, width, height int) ([]cover, error) {
	var covers []cover
	for _, path := range strings.Split(in, ",") {
		if path = strings.TrimSpace(path); path == "" {
			continue
		}
		img, err := imageio.Load(path)
		if err != nil {
			return nil, err
		}
		covers = append(covers, cover{name: path, img: img})
	}
	if urlFile != "" {
		data, err := os.ReadFile(urlFile)
		if err != nil {
			return nil, err
		}
		for _, url := range parseURLs(string(data)) {
			img, err := fetchImageWithSize(url, width, height)
			if err != nil {
				log.Printf("Error fetching %s: %v\n", url, err)
				continue
			}
			covers = append(covers, cover{name: url, img: img})
		}
	}
	if len(covers) == 0 {
		covers = append(covers, cover{name: "gradient", img: gradient(width, height)})
	}
	return covers, nil
}

func parseURLs(data string) []string {
	var urls []string
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return urls
}

func fetchImageWithSize(url string, width, height int) (image.Image, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	src, _, err := imageio.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	dist := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dist, dist.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dist, nil
}

func gradient(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(((x + y) * 255) / (width + height))
			img.SetNRGBA(x, y, color.NRGBA{r, g, b, 255})
		}
	}
	return img
}

func testStego(s *stego.Stego, mode stego.Mode, img image.Image, params testParams) testResult {
	result := testResult{testParams: params}
	payload := make([]byte, params.Payload)
	_, _ = rand.Read(payload)

	start := time.Now()

	// Encode
	carrier, err := s.Encode(stego.NewCarrier(img), payload, mode)
	if err != nil {
		log.Printf("    [FAIL] %s - Encode error: %v\n", params, err)
		return result
	}

	// Decode
	decoded, err := s.Decode(carrier, mode)
	if err != nil {
		log.Printf("    [FAIL] %s - Decode error: %v\n", params, err)
		return result
	}
	result.Elapsed = time.Since(start)
	if !bytes.Equal(decoded, payload) {
		log.Printf("    [FAIL] %s - payload mismatch\n", params)
		return result
	}

	result.Report, err = quality.Compare(img, carrier)
	if err != nil {
		log.Printf("    [FAIL] %s - Compare error: %v\n", params, err)
		return result
	}
	result.Success = true

	log.Printf("    [OK] %s - PSNR=%.2fdB MSE=%.6f Changed=%d Time=%v\n",
		params, result.Report.PSNR, result.Report.MSE, result.Report.Changed, result.Elapsed)
	return result
}
