//go:build integration

package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bobmcallan/wordpress-mcp/internal/common"
)

// startWordPress runs MariaDB + WordPress on a private network, completes
// the installer, and returns the site URL.
func startWordPress(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	t.Cleanup(cancel)

	testNet, err := network.New(ctx)
	require.NoError(t, err, "create docker network")
	t.Cleanup(func() { testNet.Remove(context.Background()) })

	db, err := testcontainers.Run(ctx, "mariadb:11",
		testcontainers.WithExposedPorts("3306/tcp"),
		network.WithNetwork([]string{"mariadb"}, testNet),
		testcontainers.WithEnv(map[string]string{
			"MARIADB_ROOT_PASSWORD": "root",
			"MARIADB_DATABASE":      "wordpress",
			"MARIADB_USER":          "wordpress",
			"MARIADB_PASSWORD":      "wordpress",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("ready for connections").WithOccurrence(2).WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err, "start mariadb")
	t.Cleanup(func() { db.Terminate(context.Background()) })

	wp, err := testcontainers.Run(ctx, "wordpress:6-apache",
		testcontainers.WithExposedPorts("80/tcp"),
		network.WithNetwork([]string{"wordpress"}, testNet),
		testcontainers.WithEnv(map[string]string{
			"WORDPRESS_DB_HOST":     "mariadb:3306",
			"WORDPRESS_DB_USER":     "wordpress",
			"WORDPRESS_DB_PASSWORD": "wordpress",
			"WORDPRESS_DB_NAME":     "wordpress",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/wp-admin/install.php").WithPort("80/tcp").WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err, "start wordpress")
	t.Cleanup(func() { wp.Terminate(context.Background()) })

	host, err := wp.Host(ctx)
	require.NoError(t, err)
	port, err := wp.MappedPort(ctx, "80/tcp")
	require.NoError(t, err)
	siteURL := fmt.Sprintf("http://%s:%s", host, port.Port())

	install(t, ctx, siteURL)
	return siteURL
}

func install(t *testing.T, ctx context.Context, siteURL string) {
	t.Helper()
	form := url.Values{
		"weblog_title":    {"MCP Test"},
		"user_name":       {"admin"},
		"admin_password":  {"admin-password-123"},
		"admin_password2": {"admin-password-123"},
		"pw_weak":         {"1"},
		"admin_email":     {"admin@example.com"},
		"blog_public":     {"0"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		siteURL+"/wp-admin/install.php?step=2", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "run installer")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "installer status")
}

func TestIntegration_AgainstWordPress(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}
	siteURL := startWordPress(t)

	c := NewClient(siteURL, "admin", "not-an-application-password", 30*time.Second, common.NewSilentLogger())
	defer c.Close()
	ctx := context.Background()

	t.Run("list posts", func(t *testing.T) {
		res := c.ListPosts(ctx, 500, 0)
		if res.Success {
			require.NotEmpty(t, res.Posts)
			assert.Equal(t, len(res.Posts), res.Count)
			assert.Equal(t, "Hello world!", res.Posts[len(res.Posts)-1].Title)
		} else {
			// Sites that accept application passwords reject the bad one.
			assert.True(t, strings.HasPrefix(res.Message, "HTTP error getting posts: 401"), res.Message)
			assert.Empty(t, res.Posts)
		}
	})

	t.Run("delete missing post", func(t *testing.T) {
		res := c.DeletePost(ctx, 999999)
		assert.False(t, res.Success)
		assert.Equal(t, int64(999999), res.PostID)
		assert.True(t, strings.HasPrefix(res.Message, "HTTP error deleting post: "), res.Message)
	})

	t.Run("create without credentials", func(t *testing.T) {
		res := c.CreatePost(ctx, CreateParams{Title: "Denied", Content: "<p>nope</p>"})
		assert.False(t, res.Success)
		assert.Nil(t, res.PostID)
		assert.True(t, strings.HasPrefix(res.Message, "HTTP error creating post: 401"), res.Message)
	})
}
