package buildspec

import (
	"strings"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
	"github.com/aiforge-platform/aiforge-backend/internal/consts"
	"github.com/aiforge-platform/aiforge-backend/pkg/domain/entities"
	"github.com/pkg/errors"
)

const dockerfileTemplate = `# syntax=docker/dockerfile:1
# Generated build file for a {{ .Framework }} model endpoint ({{ .DeploymentType }}).
{{- range .Stages }}

# ---------- stage: {{ .Name }} ----------
FROM {{ .From }} AS {{ .Name }}
{{ .Lines | join "\n" }}
{{- end }}
`

const dockerignoreTemplate = `# Build context exclusions for a {{ .DeploymentType }} deployment.
{{ .Patterns | join "\n" }}

# The normalized model package must ship in the build context.
!{{ .PackageDir }}
!{{ .PackageDir }}/**
`

// ignorePatterns are excluded from every build context regardless of
// deployment type.
var ignorePatterns = []string{
	".git",
	".svn",
	".hg",
	"__pycache__",
	"*.pyc",
	"*.pyo",
	"venv",
	".venv",
	"env",
	"node_modules",
	".idea",
	".vscode",
	"docs",
	"tests",
	"test",
	"*.log",
	".env",
	"*.pem",
	"service-account.json",
	".DS_Store",
	"__MACOSX",
}

type templateData struct {
	Framework      entities.Framework
	DeploymentType entities.DeploymentType
	Stages         []Stage
	Patterns       []string
	PackageDir     string
}

// GenerateBuildFiles renders the Dockerfile and .dockerignore for one
// deployment.
func GenerateBuildFiles(framework entities.Framework, deploymentType entities.DeploymentType) (string, string, error) {
	data := templateData{
		Framework:      framework,
		DeploymentType: deploymentType,
		Stages:         Stages(framework),
		Patterns:       ignorePatterns,
		PackageDir:     consts.ModelPackageDir,
	}

	dockerfile, err := render("dockerfile", dockerfileTemplate, data)
	if err != nil {
		return "", "", err
	}
	dockerignore, err := render("dockerignore", dockerignoreTemplate, data)
	if err != nil {
		return "", "", err
	}
	return dockerfile, dockerignore, nil
}

func render(name, text string, data templateData) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse %s template", name)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}
	return out.String(), nil
}
