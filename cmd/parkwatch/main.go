package main

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/parkwatch/parkwatch/internal/config"
	"github.com/parkwatch/parkwatch/internal/notify"
	"github.com/parkwatch/parkwatch/internal/push"
	"github.com/parkwatch/parkwatch/internal/session"
	"github.com/parkwatch/parkwatch/internal/tui"
	"github.com/parkwatch/parkwatch/pkg/client"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	dir, err := session.DefaultDir()
	if err != nil {
		return err
	}
	store := session.NewStore(dir)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("parkwatch " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "register":
			return runRegister(cfg)
		case "login":
			return runLogin(cfg, store, dir)
		case "logout":
			return runLogout(cfg, store)
		case "update":
			return runUpdate()
		case "--update-done":
			if len(os.Args) >= 4 {
				printUpdateSuccess(os.Args[2], os.Args[3])
			}
			return nil
		}
	}

	sess, err := store.Load()
	if err != nil {
		return err
	}
	if sess == nil {
		printGreeting()
		return nil
	}
	if store.Expired(time.Now()) {
		store.Clear() //nolint:errcheck // a stale token is not worth failing over
		fmt.Println("Your session has expired. Sign in again: parkwatch login")
		return nil
	}

	return launchTUI(cfg, store, dir, sess)
}

// launchTUI starts the interactive board with the push pipeline wired
// in: a background worker renders OS notifications, a log-only listener
// mirrors them into the log, and the registrar reconciles the delivery
// token after startup and after every saved ticket.
func launchTUI(cfg config.Config, store *session.Store, dir string, sess *domain.Session) error {
	logger, closeLog, err := setupLogger(dir)
	if err != nil {
		return err
	}
	defer closeLog()

	c := client.New(cfg.APIURL, sess.Token)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		worker    *push.Worker
		registrar *push.Registrar
	)
	if cfg.PushConfigured() {
		provider := push.NewStreamProvider(cfg.PushGatewayURL, cfg.VAPIDPublicKey, logger)
		worker = push.NewWorker(provider, notify.NewDesktop(), cfg.WebURL, logger)
		registrar = push.NewRegistrar(store, provider, c, worker.Ready(), logger)
	} else {
		logger.Info("push gateway not configured, notifications off")
		registrar = push.NewRegistrar(store, nil, c, nil, logger)
	}

	// Token registration failures never take the app down; the board
	// works without notifications.
	reconcileToken := func() {
		if _, err := registrar.Register(ctx); err != nil {
			logger.Warn("push token registration failed", "error", err)
		}
	}

	app := tui.NewApp(c, &sess.User, cfg.WebURL, cfg.PushConfigured(), reconcileToken)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if worker != nil {
		listener := push.NewListener(logger)
		worker.OnMessage = func(msg domain.Message) {
			listener.Handle(msg)
			p.Send(tui.NotificationMsg{Message: msg})
		}
		go func() {
			if err := worker.Run(ctx); err != nil {
				logger.Warn("push worker stopped", "error", err)
			}
		}()
	}
	go reconcileToken()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// setupLogger appends structured logs to <dir>/parkwatch.log. Stdout is
// owned by the TUI, so diagnostics go to the file.
func setupLogger(dir string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "parkwatch.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, nil))
	return logger, func() { f.Close() }, nil //nolint:errcheck
}

func runRegister(cfg config.Config) error {
	reader := bufio.NewReader(os.Stdin)

	name, err := promptLine(reader, "Name: ")
	if err != nil {
		return err
	}
	surname, err := promptLine(reader, "Surname: ")
	if err != nil {
		return err
	}
	email, err := promptLine(reader, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	c := client.New(cfg.APIURL, "")
	req := client.RegisterRequest{Name: name, Surname: surname, Email: email, Password: password}
	if err := c.Register(context.Background(), req); err != nil {
		return fmt.Errorf("%s", client.Friendly(err, "registration failed"))
	}

	fmt.Println("Account created. Sign in with: parkwatch login")
	return nil
}

func runLogin(cfg config.Config, store *session.Store, dir string) error {
	reader := bufio.NewReader(os.Stdin)

	email, err := promptLine(reader, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	c := client.New(cfg.APIURL, "")
	resp, err := c.Login(context.Background(), email, password)
	if err != nil {
		return fmt.Errorf("%s", client.Friendly(err, "login failed"))
	}

	sess := domain.Session{
		Token: resp.AccessToken,
		User:  domain.User{Name: resp.Name, Surname: resp.Surname, Email: email},
	}
	if err := store.Save(sess); err != nil {
		return err
	}
	fmt.Printf("Welcome, %s %s.\n\n", resp.Name, resp.Surname)

	// Straight into the board after signing in.
	return launchTUI(cfg, store, dir, &sess)
}

func runLogout(cfg config.Config, store *session.Store) error {
	if store.Token() == "" {
		fmt.Println("Already signed out.")
		return nil
	}

	// Release the delivery token so the gateway stops routing messages
	// to this installation. Best-effort: sign-out proceeds regardless.
	if cfg.PushConfigured() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		provider := push.NewStreamProvider(cfg.PushGatewayURL, cfg.VAPIDPublicKey, slog.New(slog.NewTextHandler(io.Discard, nil)))
		provider.Invalidate(ctx) //nolint:errcheck
	}

	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func promptLine(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// isNewerVersion returns true if latest is a newer semver than current.
func isNewerVersion(latest, current string) bool {
	parse := func(v string) (int, int, int) {
		v = strings.TrimPrefix(v, "v")
		parts := strings.SplitN(v, ".", 3)
		atoi := func(s string) int {
			n, _ := strconv.Atoi(s) //nolint:errcheck // zero-value on parse failure is desired
			return n
		}
		var maj, min, patch int
		if len(parts) > 0 {
			maj = atoi(parts[0])
		}
		if len(parts) > 1 {
			min = atoi(parts[1])
		}
		if len(parts) > 2 {
			patch = atoi(parts[2])
		}
		return maj, min, patch
	}
	lMaj, lMin, lPatch := parse(latest)
	cMaj, cMin, cPatch := parse(current)
	if lMaj != cMaj {
		return lMaj > cMaj
	}
	if lMin != cMin {
		return lMin > cMin
	}
	return lPatch > cPatch
}

func runUpdate() error {
	if version == "dev" {
		fmt.Println("dev build — install a release to enable updates")
		return nil
	}

	// Resolve the real binary path (follow symlinks).
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("runUpdate: find executable: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("runUpdate: resolve symlinks: %w", err)
	}

	// Fetch latest release from GitHub.
	httpClient := &http.Client{Timeout: 15 * time.Second}
	resp, err := httpClient.Get("https://api.github.com/repos/parkwatch/parkwatch/releases/latest")
	if err != nil {
		return fmt.Errorf("runUpdate: check for updates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("runUpdate: GitHub API returned %s", resp.Status)
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return fmt.Errorf("runUpdate: parse release: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	currentVersion := strings.TrimPrefix(version, "v")
	if !isNewerVersion(latestVersion, currentVersion) {
		printAlreadyCurrent("v" + currentVersion)
		return nil
	}

	// Find the right asset for this platform.
	tarballName := fmt.Sprintf("parkwatch_%s_%s.tar.gz", runtime.GOOS, runtime.GOARCH)
	var tarballURL, checksumsURL string
	for _, a := range release.Assets {
		switch a.Name {
		case tarballName:
			tarballURL = a.BrowserDownloadURL
		case "checksums.txt":
			checksumsURL = a.BrowserDownloadURL
		}
	}
	if tarballURL == "" {
		return fmt.Errorf("runUpdate: no asset %s in release %s", tarballName, release.TagName)
	}

	// Download to temp dir.
	tmpDir, err := os.MkdirTemp("", "parkwatch-update-*")
	if err != nil {
		return fmt.Errorf("runUpdate: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	tarballPath := filepath.Join(tmpDir, tarballName)
	if err := downloadFile(httpClient, tarballURL, tarballPath); err != nil {
		return fmt.Errorf("runUpdate: download tarball: %w", err)
	}

	// Verify checksum (mandatory).
	if checksumsURL == "" {
		return fmt.Errorf("runUpdate: release missing checksums.txt — aborting update")
	}
	checksumsPath := filepath.Join(tmpDir, "checksums.txt")
	if err := downloadFile(httpClient, checksumsURL, checksumsPath); err != nil {
		return fmt.Errorf("runUpdate: download checksums: %w", err)
	}
	if err := verifyChecksum(tarballPath, checksumsPath, tarballName); err != nil {
		return fmt.Errorf("runUpdate: %w", err)
	}

	// Extract the parkwatch binary from the tarball.
	newBinaryPath := filepath.Join(tmpDir, "parkwatch")
	if err := extractBinary(tarballPath, newBinaryPath); err != nil {
		return fmt.Errorf("runUpdate: extract: %w", err)
	}

	// Atomic replace: write to .new, then rename over the original.
	stagePath := execPath + ".new"
	defer os.Remove(stagePath) //nolint:errcheck

	src, err := os.Open(newBinaryPath)
	if err != nil {
		return fmt.Errorf("runUpdate: open extracted binary: %w", err)
	}
	defer src.Close() //nolint:errcheck

	dst, err := os.OpenFile(stagePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied writing to %s — try with sudo", filepath.Dir(execPath))
		}
		return fmt.Errorf("runUpdate: create staged binary: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close() //nolint:errcheck
		return fmt.Errorf("runUpdate: write staged binary: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("runUpdate: close staged binary: %w", err)
	}

	if err := os.Rename(stagePath, execPath); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied replacing %s — try with sudo", execPath)
		}
		return fmt.Errorf("runUpdate: replace binary: %w", err)
	}

	// Re-exec into the NEW binary so its updated code renders the success message.
	// The running process still has the old code in memory after os.Rename.
	execErr := syscall.Exec(execPath, []string{"parkwatch", "--update-done", "v" + currentVersion, "v" + latestVersion}, os.Environ())
	if execErr != nil {
		// Fallback if exec fails (e.g., Windows).
		printUpdateSuccess("v"+currentVersion, "v"+latestVersion)
	}
	return nil
}

func downloadFile(client *http.Client, url, dest string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %s from %s", resp.Status, url)
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()                   //nolint:errcheck
	const maxDownloadSize = 100 << 20 // 100 MB
	_, err = io.Copy(f, io.LimitReader(resp.Body, maxDownloadSize))
	return err
}

func verifyChecksum(filePath, checksumsPath, fileName string) error {
	data, err := os.ReadFile(checksumsPath)
	if err != nil {
		return fmt.Errorf("read checksums: %w", err)
	}
	var expected string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, fileName) {
			parts := strings.Fields(line)
			if len(parts) >= 1 {
				expected = parts[0]
				break
			}
		}
	}
	if expected == "" {
		return fmt.Errorf("no checksum found for %s", fileName)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close() //nolint:errcheck

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash file: %w", err)
	}
	actual := hex.EncodeToString(h.Sum(nil))
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

func extractBinary(tarballPath, dest string) error {
	f, err := os.Open(tarballPath)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close() //nolint:errcheck

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar read: %w", err)
		}
		// Only extract the parkwatch binary; ignore everything else.
		if filepath.Base(hdr.Name) == "parkwatch" && hdr.Typeflag == tar.TypeReg {
			out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
			if err != nil {
				return err
			}
			const maxBinarySize = 200 << 20 // 200 MB
			if _, err := io.Copy(out, io.LimitReader(tr, maxBinarySize)); err != nil {
				out.Close() //nolint:errcheck
				return err
			}
			return out.Close()
		}
	}
	return fmt.Errorf("parkwatch binary not found in tarball")
}
