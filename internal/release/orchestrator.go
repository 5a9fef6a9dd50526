package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cheesejaguar/oxide-release/internal/build"
	"github.com/cheesejaguar/oxide-release/internal/config"
	"github.com/cheesejaguar/oxide-release/internal/format"
	"github.com/cheesejaguar/oxide-release/internal/logger"
	"github.com/cheesejaguar/oxide-release/internal/publish"
	"github.com/cheesejaguar/oxide-release/internal/sign"
	"github.com/cheesejaguar/oxide-release/internal/staging"
	"github.com/cheesejaguar/oxide-release/internal/target"
	"github.com/cheesejaguar/oxide-release/internal/tools"
)

// Options contains inputs for the release entry point.
type Options struct {
	// ConfigPath is an optional path to the release configuration YAML.
	ConfigPath string
	// Formats lists the requested output formats; empty means every
	// format the host platform supports.
	Formats []format.Format
	// Universal requests a combined multi-architecture binary.
	Universal bool
	// Clean requests deleting prior build and output directories first.
	Clean bool
	// SignRequested records whether --sign was passed at all.
	SignRequested bool
	// SignIdentity is the signing identity passed with --sign.
	SignIdentity string
	// PublishDest is an optional s3://bucket/prefix upload destination.
	PublishDest string
}

// uploader pushes one produced artifact to a remote destination.
type uploader interface {
	Upload(ctx context.Context, artifactPath string) error
}

// Orchestrator drives one release run from source build to final report.
// Every step is sequential; packaging steps share the build and output
// directories, so nothing ever runs concurrently.
type Orchestrator struct {
	// req is the validated invocation.
	req *Request
	// locator memoizes external tool discovery for the run.
	locator *tools.Locator
	// uploader publishes artifacts; constructed lazily from the request's
	// publish destination when nil.
	uploader uploader
}

// NewOrchestrator constructs an orchestrator for one validated request.
func NewOrchestrator(req *Request) *Orchestrator {
	return &Orchestrator{req: req, locator: tools.NewLocator()}
}

// Run executes the full release workflow: load configuration, validate the
// request, run the pipeline and print the final report.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "oxide-release")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	req, err := NewRequest(cfg, target.DetectPlatform(), opts.Formats,
		opts.Universal, opts.Clean, opts.SignRequested, opts.SignIdentity, opts.PublishDest)
	if err != nil {
		return err
	}

	report, err := NewOrchestrator(req).Execute(ctx)
	report.Print()

	if err != nil {
		return fmt.Errorf("release failed: %w", err)
	}

	logger.Info(ctx, "Release completed")

	return nil
}

// Execute runs the pipeline. The returned report is never nil: it always
// carries one outcome per requested format that got as far as packaging,
// and every accumulated warning. A non-nil error means a fatal failure
// (build, combine, or every requested format failing).
func (o *Orchestrator) Execute(ctx context.Context) (*Report, error) {
	report := &Report{Platform: o.req.Platform, SignRequested: o.req.SignRequested}

	if o.req.Clean {
		if err := o.clean(ctx); err != nil {
			return report, err
		}
	}

	binaryPath, arch, err := o.buildBinary(ctx)
	if err != nil {
		return report, err
	}

	report.Arch = arch

	artifacts, err := o.packageFormats(ctx, report, binaryPath, arch)
	if err != nil {
		return report, err
	}

	manager := sign.NewManager(o.locator, o.req.Platform)

	o.signArtifacts(ctx, report, manager, artifacts)
	o.notarizeArtifacts(ctx, report, manager, artifacts)
	o.publishArtifacts(ctx, report, artifacts)

	if report.AllFailed() {
		return report, errors.New("every requested format failed")
	}

	return report, nil
}

// buildBinary resolves targets, compiles each one and combines the results
// when a universal binary was requested. Any failure here is fatal.
func (o *Orchestrator) buildBinary(ctx context.Context) (string, string, error) {
	targets, err := target.Resolve(o.req.Platform, o.req.Universal)
	if err != nil {
		return "", "", err
	}

	compiler := o.locator.Locate(ctx, tools.ToolCompiler)
	if !compiler.Found {
		return "", "", fmt.Errorf("compiler %q not found", tools.ToolCompiler)
	}

	invoker := build.NewInvoker(o.req.Cfg, o.req.Platform, compiler.Path)

	built, err := invoker.BuildAll(ctx, targets)
	if err != nil {
		return "", "", err
	}

	if o.req.Universal && len(built) > 1 {
		combined, err := invoker.Combine(ctx, built, o.locator.Locate(ctx, tools.ToolLipo))
		if err != nil {
			return "", "", err
		}

		return combined, "universal", nil
	}

	return built[0].BinaryPath, built[0].Arch, nil
}

// packageFormats runs every requested generator, one at a time. A missing
// tool or a failed assembly is recorded on the report and never stops the
// remaining formats.
func (o *Orchestrator) packageFormats(ctx context.Context, report *Report,
	binaryPath, arch string) ([]format.Artifact, error) {
	outputDir := filepath.Join(o.req.Cfg.OutputDir, string(o.req.Platform))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	// A cancelled prior run may have left staging trees behind.
	if err := staging.RemoveStaleTrees(outputDir); err != nil {
		report.Warnf("remove stale staging trees: %v", err)
	}

	inputs := format.Inputs{
		Cfg:        o.req.Cfg,
		Platform:   o.req.Platform,
		BinaryPath: binaryPath,
		Arch:       arch,
		OutputDir:  outputDir,
		Locator:    o.locator,
		Assembler:  staging.NewAssembler(o.req.Cfg),
	}

	artifacts := make([]format.Artifact, 0, len(o.req.Formats))

	for _, f := range o.req.Formats {
		generator, err := format.ForFormat(f)
		if err != nil {
			report.Failed(f, err)

			continue
		}

		logger.InfoKV(ctx, "Packaging", "format", string(f))

		artifact, err := generator.Generate(ctx, inputs)

		var toolMissing *format.ErrToolMissing

		switch {
		case errors.As(err, &toolMissing):
			report.Skipped(f, err.Error())
		case err != nil:
			report.Failed(f, err)
		default:
			report.Produced(artifact)
			artifacts = append(artifacts, artifact)
		}
	}

	return artifacts, nil
}

// signArtifacts signs every produced artifact in place when signing was
// requested. A failed or skipped signing degrades to a warning.
func (o *Orchestrator) signArtifacts(ctx context.Context, report *Report,
	manager *sign.Manager, artifacts []format.Artifact) {
	if !o.req.SignRequested {
		return
	}

	for i := range artifacts {
		result := manager.Sign(ctx, artifacts[i].Path, o.req.SignIdentity)
		if result.Completed {
			artifacts[i].Signed = true
			report.MarkSigned(artifacts[i].Path)

			continue
		}

		report.Warnf("sign %s: %s", filepath.Base(artifacts[i].Path), result.Reason)
	}
}

// notarizeArtifacts submits macOS artifacts for notarization when complete
// credentials are present in the environment. Failures degrade to warnings
// and never delete the produced artifact.
func (o *Orchestrator) notarizeArtifacts(ctx context.Context, report *Report,
	manager *sign.Manager, artifacts []format.Artifact) {
	if o.req.Platform != target.PlatformMacOS {
		return
	}

	creds := sign.CredentialsFromEnv()
	if !creds.Complete() {
		return
	}

	for _, artifact := range artifacts {
		result := manager.Notarize(ctx, artifact.Path, artifact.Bundle, creds)
		if !result.Completed {
			report.Warnf("notarize %s: %s", filepath.Base(artifact.Path), result.Reason)
		}
	}
}

// publishArtifacts uploads every produced artifact to the configured
// destination. Upload failures degrade to warnings.
func (o *Orchestrator) publishArtifacts(ctx context.Context, report *Report,
	artifacts []format.Artifact) {
	if o.req.PublishDest == "" || len(artifacts) == 0 {
		return
	}

	up := o.uploader
	if up == nil {
		publisher, err := publish.NewPublisher(ctx, o.req.PublishDest)
		if err != nil {
			report.Warnf("publish: %v", err)

			return
		}

		up = publisher
	}

	for _, artifact := range artifacts {
		if err := up.Upload(ctx, artifact.Path); err != nil {
			report.Warnf("publish %s: %v", filepath.Base(artifact.Path), err)
		}
	}
}
