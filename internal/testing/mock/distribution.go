package mock

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
)

// ControlScript is a stand-in for the server's bin/catalina.sh. It appends its
// arguments to <root>/invocations.log and exits with the code stored in
// <root>/<last-arg>.exit when that file exists, 0 otherwise.
const ControlScript = `#!/bin/sh
ROOT=$(cd "$(dirname "$0")/.." && pwd)
echo "$@" >> "$ROOT/invocations.log"
echo "Using CATALINA_BASE:   $ROOT"
for last; do :; done
if [ -f "$ROOT/$last.exit" ]; then
  exit "$(cat "$ROOT/$last.exit")"
fi
exit 0
`

// DistributionSpec describes a fake server distribution archive.
type DistributionSpec struct {
	// Name is the single top-level directory, e.g. "apache-tomcat-6.0.37".
	Name string
	// Scripts are written under bin/ with mode 0644, so extraction alone
	// leaves them non-executable.
	Scripts map[string]string
	// Files are extra entries relative to Name.
	Files map[string]string
}

// DefaultDistribution mirrors the layout of a Tomcat binary zip.
func DefaultDistribution(name string) DistributionSpec {
	return DistributionSpec{
		Name: name,
		Scripts: map[string]string{
			"catalina.sh": ControlScript,
			"startup.sh":  "#!/bin/sh\nexec \"$(dirname \"$0\")/catalina.sh\" start \"$@\"\n",
			"shutdown.sh": "#!/bin/sh\nexec \"$(dirname \"$0\")/catalina.sh\" stop \"$@\"\n",
		},
		Files: map[string]string{
			"bin/bootstrap.jar":      "not really a jar",
			"conf/server.xml":        "<Server port=\"8005\" shutdown=\"SHUTDOWN\"/>\n",
			"webapps/ROOT/index.jsp": "<html/>\n",
		},
	}
}

// WriteDistribution writes spec as <dir>/<Name>.zip and returns the path.
func WriteDistribution(dir string, spec DistributionSpec) (string, error) {
	path := filepath.Join(dir, spec.Name+".zip")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	// Directory entries first, as real distributions carry them.
	for _, d := range []string{"", "bin/", "conf/", "webapps/"} {
		if _, err := zw.Create(spec.Name + "/" + d); err != nil {
			return "", err
		}
	}

	write := func(name, content string) error {
		header := &zip.FileHeader{Name: spec.Name + "/" + name, Method: zip.Deflate}
		header.SetMode(0644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(content))
		return err
	}

	for name, content := range spec.Scripts {
		if err := write("bin/"+name, content); err != nil {
			return "", fmt.Errorf("failed to add script %s: %w", name, err)
		}
	}
	for name, content := range spec.Files {
		if err := write(name, content); err != nil {
			return "", fmt.Errorf("failed to add %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish archive: %w", err)
	}
	return path, nil
}
