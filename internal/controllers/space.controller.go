package controllers

import (
	"net/http"

	"spacegate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SpaceController serves one-shot space checks over HTTP
type SpaceController struct {
	path       string
	requiredGB int
	usage      services.UsageFunc
	// allowPath lets clients pick another path with ?path=
	allowPath bool
}

// NewSpaceController creates a controller checking path against requiredGB.
// usage is usually a UsageCache's Usage method. The ?path= override is only
// honoured when allowPathOverride is set, which the router ties to auth.
func NewSpaceController(path string, requiredGB int, usage services.UsageFunc, allowPathOverride bool) *SpaceController {
	return &SpaceController{path: path, requiredGB: requiredGB, usage: usage, allowPath: allowPathOverride}
}

func (sc *SpaceController) checker(c *gin.Context) (*services.Checker, bool) {
	path := sc.path
	if override, ok := c.GetQuery("path"); ok && override != sc.path {
		if !sc.allowPath {
			c.JSON(http.StatusForbidden, gin.H{"error": "path override requires authentication"})
			return nil, false
		}
		path = override
	}

	checker := services.NewChecker(path, sc.requiredGB)
	checker.Usage = sc.usage
	return checker, true
}

// usageFailed logs the OS error and answers without echoing it
func usageFailed(c *gin.Context, err error) {
	logrus.WithError(err).Error("[PROBE] Space check failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "disk usage query failed"})
}

// GetSpace runs the gate check, answering 507 when space is short
func (sc *SpaceController) GetSpace(c *gin.Context) {
	checker, ok := sc.checker(c)
	if !ok {
		return
	}

	result, err := checker.Check(c.Request.Context())
	if err != nil {
		usageFailed(c, err)
		return
	}

	if !result.Sufficient {
		logrus.Infof("[PROBE] Not enough free disk space on %s (%s/%dGB)",
			result.Path, services.FormatGB(result.FreeGB), result.RequiredGB)
		c.JSON(http.StatusInsufficientStorage, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDisk returns the usage record behind the check
func (sc *SpaceController) GetDisk(c *gin.Context) {
	checker, ok := sc.checker(c)
	if !ok {
		return
	}

	status, err := checker.DiskStatus(c.Request.Context())
	if err != nil {
		usageFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
