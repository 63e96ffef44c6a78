package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/docshare/internal/filex"
)

func (a *App) files(ctx context.Context, _ []string) error {
	token, err := a.accessToken()
	if err != nil {
		return err
	}

	files, err := a.api.ListFiles(ctx, token)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILENAME\tSIZE\tUPLOADED BY")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", f.ID, f.Filename, f.Size, f.UploadedBy)
	}
	return tw.Flush()
}

func (a *App) upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	token, err := a.accessToken()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	uploaded, err := a.api.Upload(ctx, token, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploaded %s (id %d)\n", uploaded.Filename, uploaded.ID)
	return nil
}

func (a *App) link(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return ErrUsage
	}
	token, err := a.accessToken()
	if err != nil {
		return err
	}

	link, err := a.api.MintLink(ctx, token, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, link)
	return nil
}

// download redeems a link and saves the file into the download directory.
func (a *App) download(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	token, err := a.accessToken()
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.DownloadDir)
	if err != nil {
		return err
	}

	d, err := a.api.Download(ctx, token, args[0])
	if err != nil {
		return err
	}
	defer d.Body.Close()

	path, err := filex.WriteFile(dir, filex.SafeName(d.Filename, "download"), d.Body)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Saved", path)
	return nil
}
