package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/ekobres/unifi-dns-audit"
)

var (
	cfgFile        string
	controllerURL  string
	site           string
	username       string
	password       string
	apiKey         string
	insecure       bool
	timeout        time.Duration
	savePath       string
	snapshotFile   string
	excludedVLANs  []int
	nativeVLAN     int
	managementPort int
	externalZone   string
	noProbe        bool
	jsonOutput     bool
	logLevel       string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dnsaudit",
		Short: "Audit a UniFi gateway for DNS leak paths",
		Long: `dnsaudit inspects a UniFi gateway's firewall rules, DNS settings and NAT
rules and reports where DNS traffic can slip past the intended resolver:
unblocked bypass protocols (plain 53, DoT, DoQ, DoH, DoH3), WAN DNS that
disagrees with the configured DoH provider, and port 53 redirects with
coverage gaps or wrong targets.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file with connection and audit settings")
	pf.IntSliceVar(&excludedVLANs, "excluded-vlans", nil, "VLAN ids exempt from redirect coverage")
	pf.IntVar(&nativeVLAN, "native-vlan", 0, "Native VLAN id (default 1)")
	pf.IntVar(&managementPort, "management-port", 0, "Management UI port probed on third-party DNS servers")
	pf.StringVar(&externalZone, "external-zone", "", "Firewall zone id of the WAN side (default: resolved from the snapshot)")
	pf.BoolVar(&noProbe, "no-probe", false, "Skip probing third-party DNS servers")
	pf.BoolVar(&jsonOutput, "json", false, "Emit the result as JSON instead of the text report")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAuditCmd(), newAnalyzeCmd())
	return rootCmd
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Fetch the configuration from a controller and audit it",
		RunE:  runAudit,
	}
	f := cmd.Flags()
	f.StringVar(&controllerURL, "controller", "", "Controller URL, e.g. https://192.168.1.1")
	f.StringVar(&site, "site", "default", "Controller site name")
	f.StringVarP(&username, "username", "u", "", "Controller username")
	f.StringVarP(&password, "password", "p", "", "Controller password (or UNIFI_PASSWORD)")
	f.StringVar(&apiKey, "api-key", "", "API key instead of username/password (or UNIFI_API_KEY)")
	f.BoolVarP(&insecure, "insecure", "k", false, "Skip TLS certificate verification")
	f.DurationVar(&timeout, "timeout", 15*time.Second, "Timeout per controller request")
	f.StringVar(&savePath, "save", "", "Also write the fetched snapshot to this file")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Audit a previously saved snapshot file",
		RunE:  runAnalyze,
	}
	cmd.Flags().StringVarP(&snapshotFile, "snapshot", "f", "", "Snapshot JSON file written by audit --save")
	cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runAudit(cmd *cobra.Command, args []string) error {
	slog.SetDefault(setupLogger(logLevel))
	if err := applyConfigFile(cmd); err != nil {
		return err
	}
	if controllerURL == "" {
		return fmt.Errorf("--controller is required (flag or config file)")
	}
	if password == "" {
		password = os.Getenv("UNIFI_PASSWORD")
	}
	if apiKey == "" {
		apiKey = os.Getenv("UNIFI_API_KEY")
	}

	client, err := dnsaudit.NewController(dnsaudit.ControllerConfig{
		BaseURL:            controllerURL,
		Site:               site,
		Username:           username,
		Password:           password,
		APIKey:             apiKey,
		InsecureSkipVerify: insecure,
		Timeout:            timeout,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	slog.Info("fetching configuration", "controller", controllerURL, "site", site)
	snap, err := client.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if savePath != "" {
		if err := writeSnapshot(savePath, snap); err != nil {
			return err
		}
		slog.Info("snapshot saved", "path", savePath)
	}

	return runAnalysis(ctx, snap)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	slog.SetDefault(setupLogger(logLevel))
	if err := applyConfigFile(cmd); err != nil {
		return err
	}

	data, err := os.ReadFile(snapshotFile)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap dnsaudit.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", snapshotFile, err)
	}

	return runAnalysis(cmd.Context(), snap)
}

func runAnalysis(ctx context.Context, snap dnsaudit.Snapshot) error {
	opts := dnsaudit.Options{
		ExternalZoneID: externalZone,
		ExcludedVLANs:  excludedVLANs,
		NativeVLAN:     nativeVLAN,
	}
	if !noProbe {
		opts.Prober = dnsaudit.NewProber(managementPort, 0)
	}

	result := dnsaudit.Analyze(ctx, snap, opts)
	score := dnsaudit.Score(result)
	slog.Info("analysis complete",
		"findings", len(result.Findings),
		"score", score,
		"grade", dnsaudit.Grade(score))

	if jsonOutput {
		return dnsaudit.RenderJSON(os.Stdout, result)
	}
	return dnsaudit.Render(os.Stdout, result)
}

// fileConfig mirrors the connection and audit flags so recurring
// settings can live in a YAML file instead of the command line.
type fileConfig struct {
	Controller     string `yaml:"controller"`
	Site           string `yaml:"site"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	APIKey         string `yaml:"api_key"`
	Insecure       bool   `yaml:"insecure"`
	ExcludedVLANs  []int  `yaml:"excluded_vlans"`
	NativeVLAN     int    `yaml:"native_vlan"`
	ManagementPort int    `yaml:"management_port"`
	ExternalZone   string `yaml:"external_zone"`
}

// applyConfigFile fills in settings the user did not pass as flags, so
// flags always win over the config file.
func applyConfigFile(cmd *cobra.Command) error {
	if cfgFile == "" {
		return nil
	}
	data, err := os.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", cfgFile, err)
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if !changed("controller") && cfg.Controller != "" {
		controllerURL = cfg.Controller
	}
	if !changed("site") && cfg.Site != "" {
		site = cfg.Site
	}
	if !changed("username") && cfg.Username != "" {
		username = cfg.Username
	}
	if !changed("password") && cfg.Password != "" {
		password = cfg.Password
	}
	if !changed("api-key") && cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}
	if !changed("insecure") && cfg.Insecure {
		insecure = true
	}
	if !changed("excluded-vlans") && len(cfg.ExcludedVLANs) > 0 {
		excludedVLANs = cfg.ExcludedVLANs
	}
	if !changed("native-vlan") && cfg.NativeVLAN != 0 {
		nativeVLAN = cfg.NativeVLAN
	}
	if !changed("management-port") && cfg.ManagementPort != 0 {
		managementPort = cfg.ManagementPort
	}
	if !changed("external-zone") && cfg.ExternalZone != "" {
		externalZone = cfg.ExternalZone
	}
	return nil
}

func writeSnapshot(path string, snap dnsaudit.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return f.Close()
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
