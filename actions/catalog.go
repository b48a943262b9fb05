package actions

import (
	"fmt"

	"github.com/loomworks/loom/expr"
	"github.com/loomworks/loom/internal/ptr"
	"github.com/loomworks/loom/logger"
	"github.com/loomworks/loom/option"
	"github.com/loomworks/loom/workflow"
)

// Artifacts kept for longer than this need a raised repository limit.
const warnRetentionDays = 90

// Checkout is actions/checkout.
var Checkout = &Spec{
	Name:        "checkout",
	Uses:        "actions/checkout",
	Ref:         "v6",
	Description: "Check out a Git repository",
	Schema: option.Schema{
		{Name: "repository"},
		{Name: "ref"},
		{Name: "token"},
		{Name: "ssh-key"},
		{Name: "ssh-known-hosts"},
		{Name: "ssh-strict", Kind: option.KindBool},
		{Name: "ssh-user"},
		{Name: "persist-credentials", Kind: option.KindBool},
		{Name: "path"},
		{Name: "clean", Kind: option.KindBool},
		{Name: "filter"},
		{Name: "sparse-checkout", Kind: option.KindList, Join: "\n"},
		{Name: "sparse-checkout-cone-mode", Kind: option.KindBool},
		{Name: "fetch-depth", Kind: option.KindNumber, Range: ptr.To(option.AtLeast(0))},
		{Name: "fetch-tags", Kind: option.KindBool},
		{Name: "show-progress", Kind: option.KindBool},
		{Name: "lfs", Kind: option.KindBool},
		// true, false or recursive
		{Name: "submodules", Kind: option.KindAny},
		{Name: "set-safe-directory", Kind: option.KindBool},
		{Name: "github-server-url"},
	},
	DefaultName: literalName("repository", "Checkout '%s'", "Checkout Repository"),
	Recommended: &workflow.Permissions{Contents: workflow.Read},
}

// UploadArtifact is actions/upload-artifact.
var UploadArtifact = &Spec{
	Name:        "upload-artifact",
	Uses:        "actions/upload-artifact",
	Ref:         "v6",
	Description: "Upload a build artifact",
	Schema: option.Schema{
		{Name: "path", Kind: option.KindList, Join: "\n", Required: true},
		{Name: "artifact-name", Key: "name"},
		{Name: "if-no-files-found", Choices: []string{"warn", "error", "ignore"}},
		{Name: "retention-days", Kind: option.KindNumber, Range: ptr.To(option.AtLeast(1))},
		{Name: "compression-level", Kind: option.KindNumber, Range: ptr.To(option.Between(0, 9))},
		{Name: "overwrite", Kind: option.KindBool},
		{Name: "include-hidden-files", Kind: option.KindBool},
	},
	DefaultName: literalName("name", "Upload %s", "Upload Artifact"),
	Check:       checkRetention,
}

func checkRetention(with *option.Options, l logger.Logger) error {
	v, ok := with.Get("retention-days")
	if !ok {
		return nil
	}
	if days, ok := expr.Untyped(v).Literal(); ok {
		if n, ok := days.(int64); ok && n > warnRetentionDays {
			l.Warn("retention-days is %d; artifacts are kept for at most %d days unless the repository limit is raised", n, warnRetentionDays)
		}
	}
	return nil
}

// DownloadArtifact is actions/download-artifact.
var DownloadArtifact = &Spec{
	Name:        "download-artifact",
	Uses:        "actions/download-artifact",
	Ref:         "v7",
	Description: "Download build artifacts",
	Schema: option.Schema{
		{Name: "artifact-name", Key: "name"},
		{Name: "artifact-ids", Kind: option.KindList},
		{Name: "pattern"},
		{Name: "path"},
		{Name: "merge-multiple", Kind: option.KindBool},
		{Name: "github-token"},
		{Name: "repository"},
		{Name: "run-id"},
	},
	DefaultName: literalName("name", "Download %s", "Download Artifact"),
	Check: func(with *option.Options, _ logger.Logger) error {
		_, byName := with.Get("name")
		_, byID := with.Get("artifact-ids")
		if byName && byID {
			return fmt.Errorf("'artifact-name' and 'artifact-ids' cannot be used together")
		}
		return nil
	},
}

// SetupGo is actions/setup-go.
var SetupGo = &Spec{
	Name:        "setup-go",
	Uses:        "actions/setup-go",
	Ref:         "v6",
	Description: "Install a Go toolchain",
	Schema: option.Schema{
		{Name: "go-version"},
		{Name: "go-version-file"},
		{Name: "check-latest", Kind: option.KindBool},
		{Name: "architecture"},
		{Name: "token"},
		{Name: "cache", Kind: option.KindBool},
		{Name: "cache-dependency-path", Kind: option.KindList, Join: "\n"},
	},
	DefaultName: fixedName("Setup Go"),
}

// SetupPython is actions/setup-python.
var SetupPython = &Spec{
	Name:        "setup-python",
	Uses:        "actions/setup-python",
	Ref:         "v6",
	Description: "Install one or more Python versions",
	Schema: option.Schema{
		{Name: "python-version", Kind: option.KindList, Join: "\n"},
		{Name: "python-version-file"},
		{Name: "check-latest", Kind: option.KindBool},
		{Name: "architecture"},
		{Name: "token"},
		{Name: "cache", Choices: []string{"pip", "pipenv", "poetry"}},
		{Name: "cache-dependency-path", Kind: option.KindList, Join: "\n"},
		{Name: "update-environment", Kind: option.KindBool},
		{Name: "allow-prereleases", Kind: option.KindBool},
		{Name: "freethreaded", Kind: option.KindBool},
		{Name: "pip-version"},
		{Name: "pip-install"},
	},
	DefaultName: fixedName("Setup Python"),
}

// SetupNode is actions/setup-node.
var SetupNode = &Spec{
	Name:        "setup-node",
	Uses:        "actions/setup-node",
	Ref:         "v6",
	Description: "Install a Node.js version",
	Schema: option.Schema{
		{Name: "node-version"},
		{Name: "node-version-file"},
		{Name: "check-latest", Kind: option.KindBool},
		{Name: "architecture"},
		{Name: "token"},
		{Name: "cache", Choices: []string{"npm", "yarn", "pnpm"}},
		{Name: "package-manager-cache", Kind: option.KindBool},
		{Name: "cache-dependency-path", Kind: option.KindList, Join: "\n"},
		{Name: "registry-url"},
		{Name: "scope"},
		{Name: "mirror"},
		{Name: "mirror-token"},
	},
	DefaultName: fixedName("Setup Node"),
	Recommended: &workflow.Permissions{Contents: workflow.Read},
}

// Cache is actions/cache.
var Cache = &Spec{
	Name:        "cache",
	Uses:        "actions/cache",
	Ref:         "v5",
	Description: "Cache dependencies and build outputs",
	Schema: option.Schema{
		{Name: "key", Required: true},
		{Name: "path", Kind: option.KindList, Join: "\n", Required: true},
		{Name: "restore-keys", Kind: option.KindList, Join: "\n"},
		{Name: "upload-chunk-size", Kind: option.KindNumber, Range: ptr.To(option.AtLeast(1))},
		{Name: "enableCrossOsArchive", Kind: option.KindBool},
		{Name: "fail-on-cache-miss", Kind: option.KindBool},
		{Name: "lookup-only", Kind: option.KindBool},
		{Name: "save-always", Kind: option.KindBool},
	},
	DefaultName: fixedName("Cache"),
}
