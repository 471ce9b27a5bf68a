package cmd

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bucket-manager/core/bucket"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	objectBucket      string
	objectRecursive   bool
	objectDelimiter   string
	objectContentType string
	objectExpiry      time.Duration
	objectMethod      string
	objectMinLength   int64
	objectMaxLength   int64
)

// objectCmd groups the per-object commands.
var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Operate on objects of a configured bucket",
	Long:  `Lists, reads, writes, removes and presigns objects. --bucket selects the bucket by qualifier; the primary bucket is used when omitted.`,
}

// withBucket bootstraps the application and runs fn against the selected bucket.
func withBucket(fn func(cmd *cobra.Command, args []string, svc *bucket.Service, logg *zap.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, logg, reg, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()

		svc, err := resolveBucket(reg, objectBucket)
		if err != nil {
			return err
		}
		return fn(cmd, args, svc, logg)
	}
}

var objectLsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List objects",
	Args:  cobra.MaximumNArgs(1),
	RunE: withBucket(func(cmd *cobra.Command, args []string, svc *bucket.Service, logg *zap.Logger) error {
		opts := bucket.ListOptions{Recursive: objectRecursive, Delimiter: objectDelimiter}
		if len(args) == 1 {
			opts.Prefix = args[0]
		}

		listing := svc.List(cmd.Context(), opts)
		out := cmd.OutOrStdout()
		for md := range listing.All() {
			if md.IsPrefix {
				fmt.Fprintf(out, "%28s  %s\n", "PRE", md.Key)
				continue
			}
			fmt.Fprintf(out, "%s %10d  %s\n", md.LastModified.Format(time.DateTime), md.Size, md.Key)
		}

		if n := listing.Dropped(); n > 0 {
			logg.Warn("Some listing entries could not be read", zap.Int("dropped", n))
		}
		return nil
	}),
}

var objectStatCmd = &cobra.Command{
	Use:   "stat <key>",
	Short: "Show object metadata",
	Args:  cobra.ExactArgs(1),
	RunE: withBucket(func(cmd *cobra.Command, args []string, svc *bucket.Service, _ *zap.Logger) error {
		md, err := svc.Stat(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), md)
	}),
}

var objectGetCmd = &cobra.Command{
	Use:   "get <key> [file]",
	Short: "Download an object to a file or stdout",
	Args:  cobra.RangeArgs(1, 2),
	RunE: withBucket(func(cmd *cobra.Command, args []string, svc *bucket.Service, logg *zap.Logger) error {
		rc, err := svc.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer rc.Close()

		var w io.Writer = cmd.OutOrStdout()
		if len(args) == 2 {
			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[1], err)
			}
			defer f.Close()
			w = f
		}

		n, err := io.Copy(w, rc)
		if err != nil {
			return fmt.Errorf("download of %s failed: %w", args[0], err)
		}
		logg.Debug("Object downloaded", zap.String("key", args[0]), zap.Int64("bytes", n))
		return nil
	}),
}

var objectPutCmd = &cobra.Command{
	Use:   "put <file> [key]",
	Short: "Upload a file",
	Long:  `Uploads a local file. The key defaults to the file's base name; "-" reads stdin.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: withBucket(func(cmd *cobra.Command, args []string, svc *bucket.Service, logg *zap.Logger) error {
		src := args[0]
		key := filepath.Base(src)
		if len(args) == 2 {
			key = args[1]
		}

		var r io.Reader = cmd.InOrStdin()
		if src != "-" {
			f, err := os.Open(src)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", src, err)
			}
			defer f.Close()
			r = f
		} else if len(args) < 2 {
			return fmt.Errorf("a key is required when reading stdin")
		}

		contentType := objectContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(key))
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		if err := svc.Put(cmd.Context(), key, r, -1, contentType, bucket.PutOptions{}); err != nil {
			return err
		}
		logg.Info("Object uploaded", zap.String("bucket", svc.Qualifier()), zap.String("key", key))
		return nil
	}),
}

var objectRmCmd = &cobra.Command{
	Use:   "rm <key>...",
	Short: "Remove objects",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBucket(func(cmd *cobra.Command, args []string, svc *bucket.Service, logg *zap.Logger) error {
		for _, key := range args {
			if err := svc.Remove(cmd.Context(), key); err != nil {
				return err
			}
			logg.Info("Object removed", zap.String("key", key))
		}
		return nil
	}),
}

var objectPresignCmd = &cobra.Command{
	Use:   "presign <key>",
	Short: "Create a presigned URL or POST form",
	Args:  cobra.ExactArgs(1),
	RunE: withBucket(func(cmd *cobra.Command, args []string, svc *bucket.Service, _ *zap.Logger) error {
		ctx, key := cmd.Context(), args[0]
		out := cmd.OutOrStdout()

		switch strings.ToLower(objectMethod) {
		case "get":
			u, err := svc.PresignGet(ctx, key, bucket.PresignOptions{Expiry: objectExpiry})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, u)
			return err
		case "put":
			opts := bucket.PresignOptions{Expiry: objectExpiry}
			if objectContentType != "" {
				opts.Headers = map[string]string{"Content-Type": objectContentType}
			}
			u, err := svc.PresignPut(ctx, key, opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, u)
			return err
		case "post":
			form, err := svc.PresignedPostForm(ctx, key, bucket.PostOptions{
				Expiry:            objectExpiry,
				ContentTypePrefix: objectContentType,
				MinLength:         objectMinLength,
				MaxLength:         objectMaxLength,
			})
			if err != nil {
				return err
			}
			return printJSON(out, form)
		default:
			return fmt.Errorf("unsupported method %q: use get, put or post", objectMethod)
		}
	}),
}

var objectURLCmd = &cobra.Command{
	Use:   "url <key>",
	Short: "Print the public URL of an object",
	Args:  cobra.ExactArgs(1),
	RunE: withBucket(func(cmd *cobra.Command, args []string, svc *bucket.Service, _ *zap.Logger) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), svc.PublicURL(args[0]))
		return err
	}),
}

func init() {
	RootCmd.AddCommand(objectCmd)
	objectCmd.AddCommand(objectLsCmd, objectStatCmd, objectGetCmd, objectPutCmd, objectRmCmd, objectPresignCmd, objectURLCmd)

	objectCmd.PersistentFlags().StringVarP(&objectBucket, "bucket", "b", "", "Bucket qualifier (default: primary bucket)")

	objectLsCmd.Flags().BoolVarP(&objectRecursive, "recursive", "r", false, "List every key below the prefix")
	objectLsCmd.Flags().StringVar(&objectDelimiter, "delimiter", bucket.DefaultDelimiter, "Delimiter grouping keys into prefixes")

	objectPutCmd.Flags().StringVar(&objectContentType, "content-type", "", "Content type (default: from extension)")

	objectPresignCmd.Flags().StringVarP(&objectMethod, "method", "m", "get", "get, put or post")
	objectPresignCmd.Flags().DurationVar(&objectExpiry, "expiry", bucket.DefaultPresignExpiry, "How long the URL stays valid")
	objectPresignCmd.Flags().StringVar(&objectContentType, "content-type", "", "Signed Content-Type (put) or required prefix (post)")
	objectPresignCmd.Flags().Int64Var(&objectMinLength, "min", 0, "Minimum upload size in bytes (post)")
	objectPresignCmd.Flags().Int64Var(&objectMaxLength, "max", 0, "Maximum upload size in bytes (post)")
}
