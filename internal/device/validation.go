package device

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength = 100
	maxSlugLength = 50
	maxTags       = 20
	maxUnitLength = 16
	slugPattern   = `^[a-z0-9]+(?:-[a-z0-9]+)*$`
)

var slugRegex = regexp.MustCompile(slugPattern)

// validDeviceTypes is built once for O(1) lookups.
var validDeviceTypes map[DeviceType]struct{}

func init() {
	validDeviceTypes = make(map[DeviceType]struct{}, len(AllDeviceTypes()))
	for _, t := range AllDeviceTypes() {
		validDeviceTypes[t] = struct{}{}
	}
}

// ValidateDevice checks a device before registration.
// Returns an error describing the first validation failure found.
func ValidateDevice(d *Device) error {
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDevice)
	}
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if !slugRegex.MatchString(d.Slug) || len(d.Slug) > maxSlugLength {
		return fmt.Errorf("%w: slug %q", ErrInvalidDevice, d.Slug)
	}
	if err := ValidateDeviceType(d.Type); err != nil {
		return err
	}
	if err := ValidatePlacement(d.Placement); err != nil {
		return err
	}
	if len(d.Tags) > maxTags {
		return fmt.Errorf("%w: too many tags (max %d)", ErrInvalidDevice, maxTags)
	}
	return nil
}

// ValidateSensor checks a sensor before registration.
func ValidateSensor(s *Sensor) error {
	if s.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSensor)
	}
	if s.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", ErrInvalidSensor)
	}
	if strings.TrimSpace(string(s.Type)) == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidSensor)
	}
	if len(s.Unit) > maxUnitLength {
		return fmt.Errorf("%w: unit exceeds %d characters", ErrInvalidSensor, maxUnitLength)
	}
	return nil
}

// ValidateName checks if a device name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateDeviceType checks if a device type is recognised.
func ValidateDeviceType(t DeviceType) error {
	if _, ok := validDeviceTypes[t]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceType, t)
	}
	return nil
}

// ValidatePlacement checks that placement is indoor or outdoor.
func ValidatePlacement(p Placement) error {
	switch p {
	case PlacementIndoor, PlacementOutdoor:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPlacement, p)
	}
}

// GenerateSlug creates a URL-safe slug from a name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")

	var result strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	slug = result.String()

	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// GenerateID creates a new UUID for a device or sensor.
func GenerateID() string {
	return uuid.New().String()
}
