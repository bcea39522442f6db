package capi

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrMissingGUID  = errors.New("missing metadata.guid")
	ErrMissingField = errors.New("missing required field")
)

// Credentials are the durable login material kept in the credential vault.
// APIURL, AuthURL, Username and Password are required together.
type Credentials struct {
	APIURL     string `json:"api_url"               yaml:"api_url"`
	AuthURL    string `json:"auth_url"              yaml:"auth_url"`
	LoggingURL string `json:"logging_url,omitempty" yaml:"logging_url,omitempty"`
	Username   string `json:"username"              yaml:"username"`
	Password   string `json:"password"              yaml:"password"`
}

// Complete reports whether every required field is present.
func (c Credentials) Complete() bool {
	return c.APIURL != "" && c.AuthURL != "" && c.Username != "" && c.Password != ""
}

// ResourceMetadata is the metadata block of a v2 resource.
type ResourceMetadata struct {
	GUID      string     `json:"guid"                 yaml:"guid"`
	URL       string     `json:"url"                  yaml:"url"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Resource is a v2 resource envelope.
type Resource[T any] struct {
	Metadata ResourceMetadata `json:"metadata" yaml:"metadata"`
	Entity   T                `json:"entity"   yaml:"entity"`
}

// GUID returns the resource GUID.
func (r Resource[T]) GUID() string {
	return r.Metadata.GUID
}

// Validate checks the envelope and, when supported, the entity.
func (r Resource[T]) Validate() error {
	if r.Metadata.GUID == "" {
		return ErrMissingGUID
	}

	if v, ok := any(r.Entity).(interface{ Validate() error }); ok {
		return v.Validate()
	}

	return nil
}

// ListResponse represents a paginated v2 list response.
type ListResponse[T any] struct {
	TotalResults int           `json:"total_results" yaml:"total_results"`
	TotalPages   int           `json:"total_pages"   yaml:"total_pages"`
	PrevURL      *string       `json:"prev_url"      yaml:"prev_url"`
	NextURL      *string       `json:"next_url"      yaml:"next_url"`
	Resources    []Resource[T] `json:"resources"     yaml:"resources"`
}

// Validate checks every resource in the page.
func (l *ListResponse[T]) Validate() error {
	if l.Resources == nil {
		return fmt.Errorf("%w: resources", ErrMissingField)
	}

	for i, resource := range l.Resources {
		err := resource.Validate()
		if err != nil {
			return fmt.Errorf("resources[%d]: %w", i, err)
		}
	}

	return nil
}

// GUIDs returns the GUIDs of every resource in the page, in order.
func (l *ListResponse[T]) GUIDs() []string {
	guids := make([]string, 0, len(l.Resources))
	for _, resource := range l.Resources {
		guids = append(guids, resource.Metadata.GUID)
	}

	return guids
}

// HasNext reports whether another page follows this one.
func (l *ListResponse[T]) HasNext() bool {
	return l.NextURL != nil && *l.NextURL != ""
}

// Organization is the entity of a v2 organization.
type Organization struct {
	Name                string `json:"name"                            yaml:"name"`
	Status              string `json:"status,omitempty"                yaml:"status,omitempty"`
	BillingEnabled      bool   `json:"billing_enabled"                 yaml:"billing_enabled"`
	QuotaDefinitionGUID string `json:"quota_definition_guid,omitempty" yaml:"quota_definition_guid,omitempty"`
}

// Validate implements required-field checks.
func (o Organization) Validate() error {
	if o.Name == "" {
		return fmt.Errorf("%w: entity.name", ErrMissingField)
	}

	return nil
}

// App is the entity of a v2 app.
type App struct {
	Name              string  `json:"name"                         yaml:"name"`
	State             string  `json:"state"                        yaml:"state"`
	SpaceGUID         string  `json:"space_guid"                   yaml:"space_guid"`
	Memory            int     `json:"memory"                       yaml:"memory"`
	Instances         int     `json:"instances"                    yaml:"instances"`
	DiskQuota         int     `json:"disk_quota"                   yaml:"disk_quota"`
	Buildpack         *string `json:"buildpack,omitempty"          yaml:"buildpack,omitempty"`
	DetectedBuildpack string  `json:"detected_buildpack,omitempty" yaml:"detected_buildpack,omitempty"`
	PackageState      string  `json:"package_state,omitempty"      yaml:"package_state,omitempty"`
	PackageUpdatedAt  *string `json:"package_updated_at,omitempty" yaml:"package_updated_at,omitempty"`
}

// Validate implements required-field checks.
func (a App) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: entity.name", ErrMissingField)
	}

	if a.State == "" {
		return fmt.Errorf("%w: entity.state", ErrMissingField)
	}

	return nil
}

// Space is the entity of a v2 space.
type Space struct {
	Name             string `json:"name"              yaml:"name"`
	OrganizationGUID string `json:"organization_guid" yaml:"organization_guid"`
}

// Validate implements required-field checks.
func (s Space) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: entity.name", ErrMissingField)
	}

	return nil
}

// AppSummary represents the /v2/apps/:guid/summary response.
type AppSummary struct {
	GUID              string           `json:"guid"                         yaml:"guid"`
	Name              string           `json:"name"                         yaml:"name"`
	State             string           `json:"state"                        yaml:"state"`
	Memory            int              `json:"memory"                       yaml:"memory"`
	DiskQuota         int              `json:"disk_quota"                   yaml:"disk_quota"`
	Instances         int              `json:"instances"                    yaml:"instances"`
	RunningInstances  int              `json:"running_instances"            yaml:"running_instances"`
	Buildpack         *string          `json:"buildpack,omitempty"          yaml:"buildpack,omitempty"`
	DetectedBuildpack string           `json:"detected_buildpack,omitempty" yaml:"detected_buildpack,omitempty"`
	PackageState      string           `json:"package_state,omitempty"      yaml:"package_state,omitempty"`
	SpaceGUID         string           `json:"space_guid,omitempty"         yaml:"space_guid,omitempty"`
	Routes            []Route          `json:"routes"                       yaml:"routes"`
	Services          []ServiceBinding `json:"services"                     yaml:"services"`
}

// Validate implements required-field checks.
func (s *AppSummary) Validate() error {
	if s.GUID == "" {
		return fmt.Errorf("%w: guid", ErrMissingField)
	}

	if s.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}

	for i, service := range s.Services {
		if service.Name == "" {
			return fmt.Errorf("%w: services[%d].name", ErrMissingField, i)
		}
	}

	return nil
}

// Route is an app route as embedded in the app summary.
type Route struct {
	GUID   string      `json:"guid"   yaml:"guid"`
	Host   string      `json:"host"   yaml:"host"`
	Path   string      `json:"path"   yaml:"path"`
	Domain RouteDomain `json:"domain" yaml:"domain"`
}

// RouteDomain is the domain of a route.
type RouteDomain struct {
	GUID string `json:"guid" yaml:"guid"`
	Name string `json:"name" yaml:"name"`
}

// URL returns the route as host.domain/path.
func (r Route) URL() string {
	url := r.Domain.Name
	if r.Host != "" {
		url = r.Host + "." + url
	}

	return url + r.Path
}

// ServiceBinding is a service instance bound to an app, as embedded in the app summary.
type ServiceBinding struct {
	GUID          string       `json:"guid"                   yaml:"guid"`
	Name          string       `json:"name"                   yaml:"name"`
	BoundAppCount int          `json:"bound_app_count"        yaml:"bound_app_count"`
	ServicePlan   *ServicePlan `json:"service_plan,omitempty" yaml:"service_plan,omitempty"`
}

// ServicePlan is the plan of a bound service instance.
type ServicePlan struct {
	GUID    string          `json:"guid"    yaml:"guid"`
	Name    string          `json:"name"    yaml:"name"`
	Service ServiceOffering `json:"service" yaml:"service"`
}

// ServiceOffering is the service offering behind a plan.
type ServiceOffering struct {
	GUID     string `json:"guid"     yaml:"guid"`
	Label    string `json:"label"    yaml:"label"`
	Provider string `json:"provider" yaml:"provider"`
	Version  string `json:"version"  yaml:"version"`
}

// Label returns the service offering label, or "user-provided" when the
// binding has no plan.
func (b ServiceBinding) Label() string {
	if b.ServicePlan == nil {
		return "user-provided"
	}

	return b.ServicePlan.Service.Label
}

// PlanName returns the service plan name, or an empty string.
func (b ServiceBinding) PlanName() string {
	if b.ServicePlan == nil {
		return ""
	}

	return b.ServicePlan.Name
}

// AppStats represents the /v2/apps/:guid/stats response keyed by instance index.
type AppStats map[string]InstanceStats

// Validate implements required-field checks.
func (s AppStats) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: instances", ErrMissingField)
	}

	for index, instance := range s {
		if instance.State == "" {
			return fmt.Errorf("%w: %s.state", ErrMissingField, index)
		}
	}

	return nil
}

// InstanceStats is the state of a single app instance.
type InstanceStats struct {
	State string               `json:"state"           yaml:"state"`
	Stats *InstanceStatsDetail `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// InstanceStatsDetail holds the runtime details of a running instance.
type InstanceStatsDetail struct {
	Name      string        `json:"name"       yaml:"name"`
	URIs      []string      `json:"uris"       yaml:"uris"`
	Host      string        `json:"host"       yaml:"host"`
	Port      int           `json:"port"       yaml:"port"`
	Uptime    int64         `json:"uptime"     yaml:"uptime"`
	MemQuota  int64         `json:"mem_quota"  yaml:"mem_quota"`
	DiskQuota int64         `json:"disk_quota" yaml:"disk_quota"`
	Usage     InstanceUsage `json:"usage"      yaml:"usage"`
}

// InstanceUsage is the resource usage of an instance.
type InstanceUsage struct {
	Time string  `json:"time" yaml:"time"`
	CPU  float64 `json:"cpu"  yaml:"cpu"`
	Mem  int64   `json:"mem"  yaml:"mem"`
	Disk int64   `json:"disk" yaml:"disk"`
}

// Info represents the /v2/info response.
type Info struct {
	Name                   string `json:"name"                               yaml:"name"`
	Build                  string `json:"build"                              yaml:"build"`
	Support                string `json:"support"                            yaml:"support"`
	Version                int    `json:"version"                            yaml:"version"`
	Description            string `json:"description"                        yaml:"description"`
	AuthorizationEndpoint  string `json:"authorization_endpoint"             yaml:"authorization_endpoint"`
	TokenEndpoint          string `json:"token_endpoint"                     yaml:"token_endpoint"`
	APIVersion             string `json:"api_version"                        yaml:"api_version"`
	LoggingEndpoint        string `json:"logging_endpoint,omitempty"         yaml:"logging_endpoint,omitempty"`
	DopplerLoggingEndpoint string `json:"doppler_logging_endpoint,omitempty" yaml:"doppler_logging_endpoint,omitempty"`
}

// Validate implements required-field checks.
func (i *Info) Validate() error {
	if i.AuthorizationEndpoint == "" {
		return fmt.Errorf("%w: authorization_endpoint", ErrMissingField)
	}

	return nil
}

// TokenURL returns the OAuth token endpoint derived from the authorization endpoint.
func (i *Info) TokenURL() string {
	return strings.TrimRight(i.AuthorizationEndpoint, "/") + "/oauth/token"
}
