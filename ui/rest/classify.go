package rest

import (
	"fmt"
	"image"
	"mime/multipart"
	"os"

	domainClassifier "github.com/AzielCF/az-plant/domains/classifier"
	pkgError "github.com/AzielCF/az-plant/pkg/error"
	"github.com/AzielCF/az-plant/validations"
	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/webp"
)

type Classify struct {
	Classifier domainClassifier.IClassifier
	UploadDir  string
}

func InitRestClassify(app fiber.Router, handler Classify) Classify {
	app.Post("/classify", handler.Classify)
	return handler
}

// Classify accepts a jpeg, png or webp leaf photo in the "file" field and
// runs it through the configured classifier. webp is re-encoded as jpeg.
func (h *Classify) Classify(c *fiber.Ctx) error {
	if h.Classifier == nil {
		return unavailable(c, "classifier")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, pkgError.ValidationError("file: "+err.Error()))
	}
	contentType := fh.Header.Get(fiber.HeaderContentType)
	if err := validations.ValidateImageUpload(contentType, fh.Size); err != nil {
		return fail(c, err)
	}

	path, err := h.store(fh, contentType)
	if err != nil {
		return fail(c, err)
	}
	defer removeQuietly(path)

	logrus.WithFields(logrus.Fields{"file": fh.Filename, "size": humanize.Bytes(uint64(fh.Size))}).Info("[REST] classifying upload")
	result, err := h.Classifier.Classify(c.UserContext(), path)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status":  fiber.StatusBadGateway,
			"code":    "CLASSIFIER_ERROR",
			"message": err.Error(),
		})
	}
	return success(c, "Classification result", result)
}

func (h *Classify) store(fh *multipart.FileHeader, contentType string) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}

	var img image.Image
	switch contentType {
	case "image/webp":
		img, err = webp.Decode(src)
	default:
		img, err = imaging.Decode(src, imaging.AutoOrientation(true))
	}
	if err != nil {
		return "", pkgError.ValidationError("file: not a decodable image: " + err.Error())
	}

	if contentType == "image/png" {
		path := tempUploadPath(h.UploadDir, ".png")
		return path, imaging.Save(img, path)
	}
	path := tempUploadPath(h.UploadDir, ".jpg")
	return path, imaging.Save(img, path, imaging.JPEGQuality(95))
}
