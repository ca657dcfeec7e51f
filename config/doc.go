// Package config loads, validates, and live-updates SemReason
// configuration.
//
// A Config comes from layered JSON files (Loader merges base plus
// overrides, then applies SEMREASON_* environment variables) and is
// held behind a SafeConfig for concurrent access. At runtime a Manager
// mirrors the config into the semreason_config JetStream KV bucket and
// applies edits made there back into the process, so operators can
// reconfigure services and reasoning components without a restart.
//
// Loading:
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.json")
//	loader.AddLayer("config/production.json") // last layer wins per key
//	loader.EnableValidation(true)
//	cfg, err := loader.Load()
//
// Watching for runtime changes:
//
//	cm, err := config.NewConfigManager(cfg, natsClient, logger)
//	if err := cm.Start(ctx); err != nil {
//		return err
//	}
//	defer cm.Stop(5 * time.Second)
//
//	for update := range cm.OnChange("components.reason-*") {
//		applyReasonerConfig(update.Config.Get())
//	}
//
// Reads through SafeConfig.Get return deep copies, and writes go
// through Validate, so a half-edited or malformed config never reaches
// running components. File input is screened before parsing: size and
// JSON nesting limits, path traversal checks, and regular-file-only
// reads.
//
// The dynamic map[string]any sections components receive are best read
// through the typed accessors (GetString, GetNestedInt, ...), which
// fall back instead of panicking on missing keys or JSON's float64
// numbers.
//
// See example_config.json in this directory for a complete worked
// example.
package config
