package mock

import (
	"archive/zip"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusServer(t *testing.T) {
	s := NewStatusServer("/app/status", 2, http.StatusServiceUnavailable)
	defer s.Close()

	var codes []int
	for i := 0; i < 4; i++ {
		resp, err := http.Get(s.URL())
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{503, 503, 200, 200}, codes)
	assert.Equal(t, 4, s.RequestCount())
	assert.Len(t, s.Hits(), 4)
	assert.Positive(t, s.Port())
	assert.True(t, strings.HasSuffix(s.URL(), "/app/status"))
}

func TestJASPIServer_UnknownContextRoot(t *testing.T) {
	s := NewJASPIServer("jaspi")
	defer s.Close()

	resp, err := http.Get(strings.TrimSuffix(s.URL(), "/jaspi") + "/other/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(s.URL() + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWriteDistribution(t *testing.T) {
	path, err := WriteDistribution(t.TempDir(), DefaultDistribution("apache-tomcat-6.0.37"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "apache-tomcat-6.0.37.zip"))

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		assert.True(t, strings.HasPrefix(f.Name, "apache-tomcat-6.0.37/"), f.Name)
		if f.Name == "apache-tomcat-6.0.37/bin/catalina.sh" {
			assert.Zero(t, f.Mode().Perm()&0111, "scripts are stored without execute permission")
		}
	}
	sort.Strings(names)
	assert.Contains(t, names, "apache-tomcat-6.0.37/bin/catalina.sh")
	assert.Contains(t, names, "apache-tomcat-6.0.37/bin/")
	assert.Contains(t, names, "apache-tomcat-6.0.37/conf/server.xml")
}
