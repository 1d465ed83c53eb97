package gamepad

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/soar/simrx/internal/axis"
	"github.com/soar/simrx/internal/config"
	"github.com/soar/simrx/internal/demand"
)

// Profile holds the channel wiring and handling flags for one device type.
// Axis indexes follow the SDL/evdev order of the device.
type Profile struct {
	Name              string
	AxisMap           demand.AxisMap
	ReversedVerticals bool
	SpringyThrottle   bool
	UseButtonForAux   bool
}

// Config returns the demand settings the profile stands for.
func (p *Profile) Config() demand.Config {
	return demand.Config{
		AxisMap:           p.AxisMap,
		ReversedVerticals: p.ReversedVerticals,
		SpringyThrottle:   p.SpringyThrottle,
		UseButtonForAux:   p.UseButtonForAux,
	}
}

// Built-in profiles for common controllers.

// Gamepads fly mode 2: left Y throttle, left X rudder, right stick
// aileron/elevator. Their Y axes read negative when pushed up and the left
// stick springs back to center, so throttle is integrated. Aux has no
// dedicated axis on a gamepad and is held low.
var xboxProfile = &Profile{
	Name:              "xbox",
	AxisMap:           demand.AxisMap{1, 2, 3, 0, 4},
	ReversedVerticals: true,
	SpringyThrottle:   true,
	UseButtonForAux:   true,
}

var playstationProfile = &Profile{
	Name:              "playstation",
	AxisMap:           demand.AxisMap{1, 2, 3, 0, 4},
	ReversedVerticals: true,
	SpringyThrottle:   true,
	UseButtonForAux:   true,
}

var switchProProfile = &Profile{
	Name:              "switch_pro",
	AxisMap:           demand.AxisMap{1, 2, 3, 0, 4},
	ReversedVerticals: true,
	SpringyThrottle:   true,
	UseButtonForAux:   true,
}

// Transmitters in USB joystick mode report non-returning sticks already in
// the right sense.
var taranisProfile = &Profile{
	Name:    "taranis",
	AxisMap: demand.AxisMap{2, 0, 1, 3, 4},
}

var spektrumProfile = &Profile{
	Name:    "spektrum",
	AxisMap: demand.AxisMap{1, 2, 3, 0, 4},
}

// Flight sticks with a throttle slider on axis 3 and twist rudder.
var extreme3DProfile = &Profile{
	Name:              "extreme3d",
	AxisMap:           demand.AxisMap{3, 0, 1, 2, 4},
	ReversedVerticals: true,
}

var genericProfile = &Profile{
	Name:    "generic",
	AxisMap: demand.IdentityMap,
}

var profiles = map[string]*Profile{
	xboxProfile.Name:        xboxProfile,
	playstationProfile.Name: playstationProfile,
	switchProProfile.Name:   switchProProfile,
	taranisProfile.Name:     taranisProfile,
	spektrumProfile.Name:    spektrumProfile,
	extreme3DProfile.Name:   extreme3DProfile,
	genericProfile.Name:     genericProfile,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*Profile{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxProfile, // Xbox 360
	{0x045E, 0x02FF}: xboxProfile, // Xbox One
	{0x045E, 0x0B12}: xboxProfile, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxProfile, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationProfile, // DualSense
	{0x054C, 0x09CC}: playstationProfile, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationProfile, // DualShock 4 v1
	{0x054C, 0x0268}: playstationProfile, // DualShock 3
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProProfile,
	// FrSky Taranis in USB joystick mode
	{0x0483, 0x5710}: taranisProfile,
	// Logitech Extreme 3D Pro
	{0x046D, 0xC215}: extreme3DProfile,
}

// Product name fragments for devices whose IDs vary between firmwares.
var knownNames = []struct {
	fragment string
	profile  *Profile
}{
	{"taranis", taranisProfile},
	{"frsky", taranisProfile},
	{"deviationtx", taranisProfile},
	{"spektrum", spektrumProfile},
	{"extreme 3d", extreme3DProfile},
	{"x-box", xboxProfile},
	{"xbox", xboxProfile},
	{"ps3", playstationProfile},
	{"dualshock", playstationProfile},
	{"dualsense", playstationProfile},
	{"pro controller", switchProProfile},
}

// GetProfile returns the profile for a device, matched by vendor/product ID
// and then by product name. Falls back to the generic profile.
func GetProfile(dev axis.Device) *Profile {
	if p, ok := knownDevices[deviceKey{VendorID: dev.VendorID, ProductID: dev.ProductID}]; ok {
		return p
	}
	name := strings.ToLower(dev.Name)
	for _, kn := range knownNames {
		if strings.Contains(name, kn.fragment) {
			return kn.profile
		}
	}
	return genericProfile
}

// ProfileByName returns a built-in profile.
func ProfileByName(name string) (*Profile, error) {
	if p, ok := profiles[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown profile %q (have %s)", name, strings.Join(ProfileNames(), ", "))
}

// ProfileNames lists the built-in profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewResolver picks a profile for the device, or the one named in c, and
// applies any explicit overrides from c on top of it.
func NewResolver(c config.Controller) demand.Resolver {
	return demand.ResolverFunc(func(dev axis.Device) (demand.Config, error) {
		p := GetProfile(dev)
		if c.Profile != "" {
			var err error
			if p, err = ProfileByName(c.Profile); err != nil {
				return demand.Config{}, err
			}
		}
		log.Printf("Using profile %s for %q (VID=%04X PID=%04X)", p.Name, dev.Name, dev.VendorID, dev.ProductID)

		cfg := p.Config()
		if len(c.AxisMap) > 0 {
			m, err := demand.AxisMapFrom(c.AxisMap)
			if err != nil {
				return demand.Config{}, err
			}
			cfg.AxisMap = m
		}
		if c.ReversedVerticals != nil {
			cfg.ReversedVerticals = *c.ReversedVerticals
		}
		if c.SpringyThrottle != nil {
			cfg.SpringyThrottle = *c.SpringyThrottle
		}
		if c.UseButtonForAux != nil {
			cfg.UseButtonForAux = *c.UseButtonForAux
		}
		return cfg, nil
	})
}
