package cmd

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/architected-by-miguel/sitecms/api"
	"github.com/architected-by-miguel/sitecms/cmsclient"
)

var (
	siteURL      string
	pushMessage  string
	uploadFolder string
	importFolder string
	noCommit     bool

	// cmsHTTPClient overrides the client used to reach the site.
	cmsHTTPClient *http.Client
)

var cmsCmd = &cobra.Command{
	Use:   "cms",
	Short: "Edit site content through a running server",
	Long: `Commands that log in to a running sitecms server with SITE_PASSWORD and
commit content through its CMS API, exactly as the admin UI does.`,
}

var loginCheckCmd = &cobra.Command{
	Use:   "login-check",
	Short: "Log in and confirm the session is accepted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCMSClient(cmd.Context())
		if err != nil {
			return err
		}
		ok, err := c.VerifySession(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("session was not accepted after login")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session OK (%s)\n", siteURL)
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push <local-file> <repo-path>",
	Short: "Commit a local Markdown or JSON file to the site repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		c, err := newCMSClient(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := c.WriteFile(cmd.Context(), args[1], string(data), pushMessage)
		if err != nil {
			return err
		}
		printWrite(cmd, resp)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <repo-path>",
	Short: "Delete a Markdown document from the site repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCMSClient(cmd.Context())
		if err != nil {
			return err
		}
		if err := c.DeleteFile(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <image-file>",
	Short: "Upload an image and print its public URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		mimeType, _, _ := strings.Cut(mime.TypeByExtension(filepath.Ext(args[0])), ";")
		c, err := newCMSClient(cmd.Context())
		if err != nil {
			return err
		}
		resp, err := c.UploadImage(cmd.Context(), api.UploadImageRequest{
			FileName:   filepath.Base(args[0]),
			MimeType:   mimeType,
			DataBase64: base64.StdEncoding.EncodeToString(data),
			Folder:     uploadFolder,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n%s\n", resp.Path, resp.PublicURL)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <markdown-file> <repo-path>",
	Short: "Upload a document's local images, then commit it",
	Long: `Reads a Markdown document, uploads every image it references from the
local filesystem (relative to the document), rewrites the references to the
uploaded URLs and commits the result. Images that fail to upload are
replaced with a placeholder quote and reported as warnings.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(cmsCmd)
	cmsCmd.PersistentFlags().StringVar(&siteURL, "url", "http://localhost:8080", "Base URL of the running site")
	cmsCmd.AddCommand(loginCheckCmd, pushCmd, rmCmd, uploadCmd, importCmd)

	pushCmd.Flags().StringVarP(&pushMessage, "message", "m", "", "Commit message (default: derived from the path)")
	uploadCmd.Flags().StringVar(&uploadFolder, "folder", "", "Image folder under public/images/cms")
	importCmd.Flags().StringVar(&importFolder, "folder", "imports", "Image folder under public/images/cms")
	importCmd.Flags().StringVarP(&pushMessage, "message", "m", "", "Commit message (default: derived from the path)")
	importCmd.Flags().BoolVar(&noCommit, "no-commit", false, "Print the rewritten document instead of committing it")
}

func runImport(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	c, err := newCMSClient(cmd.Context())
	if err != nil {
		return err
	}

	im := cmsclient.NewImporter(c, os.DirFS(filepath.Dir(args[0])), importFolder)
	res, err := im.Import(cmd.Context(), args[1], source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, u := range res.Uploaded {
		fmt.Fprintf(out, "[UPLOADED] %s\n", u)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "[WARN] %s\n", w)
	}
	if noCommit {
		fmt.Fprint(out, res.Markdown)
		return nil
	}

	resp, err := c.WriteFile(cmd.Context(), args[1], res.Markdown, pushMessage)
	if err != nil {
		return err
	}
	printWrite(cmd, resp)
	return nil
}

func newCMSClient(ctx context.Context) (*cmsclient.Client, error) {
	password := os.Getenv("SITE_PASSWORD")
	if password == "" {
		return nil, errors.New("SITE_PASSWORD is not set")
	}
	var opts []cmsclient.Option
	if cmsHTTPClient != nil {
		opts = append(opts, cmsclient.WithHTTPClient(cmsHTTPClient))
	}
	c, err := cmsclient.New(siteURL, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx, password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}

func printWrite(cmd *cobra.Command, resp *api.WriteFileResponse) {
	out := cmd.OutOrStdout()
	verb := "Updated"
	if resp.Created {
		verb = "Created"
	}
	fmt.Fprintf(out, "%s %s (%s)\n", verb, resp.Path, resp.Message)
	if resp.LiveURL != "" {
		fmt.Fprintf(out, "Live:    %s\n", resp.LiveURL)
	}
	if resp.PreviewURL != "" {
		fmt.Fprintf(out, "Preview: %s\n", resp.PreviewURL)
	}
	fmt.Fprintln(out, resp.Deployment)
}
