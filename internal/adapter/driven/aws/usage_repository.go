package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"github.com/hydernasirr/aws-finops-2/internal/domain/entity"
	"github.com/hydernasirr/aws-finops-2/internal/domain/repository"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

const dateLayout = "2006-01-02"

// UsageRepositoryImpl implements the UsageRepository against the AWS Cost
// Explorer, EC2, RDS and STS APIs. It holds the resolved credential scope
// for the lifetime of the process and caches nothing else.
type UsageRepositoryImpl struct {
	ceClient  *costexplorer.Client
	ec2Client *ec2.Client
	rdsClient *rds.Client
	stsClient *sts.Client

	timeout time.Duration
	retry   RetryConfig
	logger  *zap.Logger
}

// NewUsageRepository builds the gateway from the configured credential
// scope. Empty access keys fall through to the default credential chain.
func NewUsageRepository(ctx context.Context, cfg types.Config, logger *zap.Logger) (repository.UsageRepository, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Cost Explorer is a global API served out of us-east-1.
	ceCfg := awsCfg.Copy()
	ceCfg.Region = "us-east-1"

	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = types.DefaultConfig().UpstreamTimeout
	}

	return &UsageRepositoryImpl{
		ceClient:  costexplorer.NewFromConfig(ceCfg),
		ec2Client: ec2.NewFromConfig(awsCfg),
		rdsClient: rds.NewFromConfig(awsCfg),
		stsClient: sts.NewFromConfig(awsCfg),
		timeout:   timeout,
		retry:     DefaultRetryConfig(),
		logger:    logger,
	}, nil
}

// call wraps one upstream operation with the per-call timeout, error
// classification and bounded retry.
func (r *UsageRepositoryImpl) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return retryWithBackoff(ctx, r.retry, r.logger, op, func() error {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return classify(op, fn(callCtx))
	})
}

func (r *UsageRepositoryImpl) AccountID(ctx context.Context) (string, error) {
	const op = "aws.AccountID"

	var account string
	err := r.call(ctx, op, func(ctx context.Context) error {
		out, err := r.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		if err != nil {
			return err
		}
		account = aws.ToString(out.Account)
		return nil
	})
	if err != nil {
		return "", err
	}
	return account, nil
}

func (r *UsageRepositoryImpl) FetchCostAndUsage(ctx context.Context, start, end time.Time, granularity entity.Granularity) ([]entity.CostRecord, error) {
	const op = "aws.FetchCostAndUsage"

	if !start.Before(end) {
		return nil, types.Errorf(types.KindInvalidWindow, op,
			"window start %s is not before end %s", start.Format(dateLayout), end.Format(dateLayout))
	}

	var ceGranularity ceTypes.Granularity
	switch granularity {
	case entity.GranularityDaily:
		ceGranularity = ceTypes.GranularityDaily
	case entity.GranularityMonthly:
		ceGranularity = ceTypes.GranularityMonthly
	default:
		return nil, types.Errorf(types.KindInvalidWindow, op, "unsupported granularity %q", granularity)
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format(dateLayout)),
			End:   aws.String(end.Format(dateLayout)),
		},
		Granularity: ceGranularity,
		Metrics:     []string{"UnblendedCost"},
		GroupBy: []ceTypes.GroupDefinition{
			{Type: ceTypes.GroupDefinitionTypeDimension, Key: aws.String("SERVICE")},
		},
	}

	var records []entity.CostRecord
	for {
		var out *costexplorer.GetCostAndUsageOutput
		err := r.call(ctx, op, func(ctx context.Context) error {
			var err error
			out, err = r.ceClient.GetCostAndUsage(ctx, input)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, result := range out.ResultsByTime {
			bucket, err := time.Parse(dateLayout, aws.ToString(result.TimePeriod.Start))
			if err != nil {
				continue
			}
			for _, group := range result.Groups {
				metric, ok := group.Metrics["UnblendedCost"]
				if !ok || metric.Amount == nil || len(group.Keys) == 0 {
					continue
				}
				amount, err := strconv.ParseFloat(*metric.Amount, 64)
				if err != nil {
					continue
				}
				records = append(records, entity.CostRecord{
					Category: group.Keys[0],
					Date:     bucket,
					Amount:   amount,
				})
			}
		}

		if out.NextPageToken == nil {
			break
		}
		input.NextPageToken = out.NextPageToken
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

func (r *UsageRepositoryImpl) FetchCostForecast(ctx context.Context, start, end time.Time) (*entity.Forecast, error) {
	const op = "aws.FetchCostForecast"

	if !start.Before(end) {
		return nil, types.Errorf(types.KindInvalidWindow, op,
			"window start %s is not before end %s", start.Format(dateLayout), end.Format(dateLayout))
	}

	input := &costexplorer.GetCostForecastInput{
		TimePeriod: &ceTypes.DateInterval{
			Start: aws.String(start.Format(dateLayout)),
			End:   aws.String(end.Format(dateLayout)),
		},
		Metric:                  ceTypes.MetricUnblendedCost,
		Granularity:             ceTypes.GranularityDaily,
		PredictionIntervalLevel: aws.Int32(80),
	}

	var out *costexplorer.GetCostForecastOutput
	err := r.call(ctx, op, func(ctx context.Context) error {
		var err error
		out, err = r.ceClient.GetCostForecast(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}

	forecast := &entity.Forecast{Source: entity.ForecastSourceUpstream}
	for _, result := range out.ForecastResultsByTime {
		date, err := time.Parse(dateLayout, aws.ToString(result.TimePeriod.Start))
		if err != nil {
			continue
		}
		point := entity.ForecastPoint{Date: date}
		point.PredictedAmount = parseAmount(result.MeanValue)
		point.LowerBound = parseAmount(result.PredictionIntervalLowerBound)
		point.UpperBound = parseAmount(result.PredictionIntervalUpperBound)
		if point.PredictedAmount < 0 {
			point.PredictedAmount = 0
		}
		forecast.Points = append(forecast.Points, point)
		forecast.TotalForecast += point.PredictedAmount
	}
	forecast.Days = len(forecast.Points)
	if forecast.Days > 0 {
		forecast.DailyAverage = forecast.TotalForecast / float64(forecast.Days)
	}
	return forecast, nil
}

// FetchResourceInventory queries each requested resource source
// concurrently. A source that fails for a transient or permission reason is
// reported as a failed section; invalid credentials fail the whole fetch
// since no source can succeed without them.
func (r *UsageRepositoryImpl) FetchResourceInventory(ctx context.Context, resourceTypes []entity.ResourceType) (repository.InventoryResult, error) {
	if len(resourceTypes) == 0 {
		resourceTypes = entity.AllResourceTypes
	}

	fetchers := map[entity.ResourceType]func(context.Context) ([]entity.ResourceRecord, error){
		entity.ResourceTypeEC2Instance: r.fetchEC2Instances,
		entity.ResourceTypeEBSVolume:   r.fetchEBSVolumes,
		entity.ResourceTypeElasticIP:   r.fetchElasticIPs,
		entity.ResourceTypeRDSInstance: r.fetchRDSInstances,
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		result  repository.InventoryResult
		sectErr = make(map[entity.ResourceType]error)
	)

	for _, resourceType := range resourceTypes {
		fetch, ok := fetchers[resourceType]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(rt entity.ResourceType, fetch func(context.Context) ([]entity.ResourceRecord, error)) {
			defer wg.Done()
			records, err := fetch(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sectErr[rt] = err
				result.FailedSections = append(result.FailedSections, rt)
				return
			}
			result.Records = append(result.Records, records...)
		}(resourceType, fetch)
	}
	wg.Wait()

	sort.Slice(result.FailedSections, func(i, j int) bool {
		return result.FailedSections[i] < result.FailedSections[j]
	})
	sort.SliceStable(result.Records, func(i, j int) bool {
		if result.Records[i].ResourceType != result.Records[j].ResourceType {
			return result.Records[i].ResourceType < result.Records[j].ResourceType
		}
		return result.Records[i].ResourceID < result.Records[j].ResourceID
	})

	for _, err := range sectErr {
		// Bad credentials doom every section alike; surface immediately.
		if types.KindOf(err) == types.KindUnauthenticated || errors.Is(err, context.Canceled) {
			return repository.InventoryResult{}, err
		}
	}
	if len(sectErr) == len(resourceTypes) && len(resourceTypes) > 0 {
		for _, err := range sectErr {
			return repository.InventoryResult{}, err
		}
	}
	for rt, err := range sectErr {
		r.logger.Warn("inventory section unavailable",
			zap.String("resource_type", string(rt)),
			zap.Error(err))
	}
	return result, nil
}

func (r *UsageRepositoryImpl) fetchEC2Instances(ctx context.Context) ([]entity.ResourceRecord, error) {
	const op = "aws.fetchEC2Instances"

	var records []entity.ResourceRecord
	err := r.call(ctx, op, func(ctx context.Context) error {
		records = records[:0]
		paginator := ec2.NewDescribeInstancesPaginator(r.ec2Client, &ec2.DescribeInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, reservation := range page.Reservations {
				for _, instance := range reservation.Instances {
					record := entity.ResourceRecord{
						ResourceID:   aws.ToString(instance.InstanceId),
						ResourceType: entity.ResourceTypeEC2Instance,
						State:        string(instance.State.Name),
						Metadata: entity.ResourceMetadata{
							InstanceClass: string(instance.InstanceType),
						},
					}
					if instance.LaunchTime != nil {
						record.Metadata.LaunchTime = *instance.LaunchTime
					}
					records = append(records, record)
				}
			}
		}
		return nil
	})
	return records, err
}

func (r *UsageRepositoryImpl) fetchEBSVolumes(ctx context.Context) ([]entity.ResourceRecord, error) {
	const op = "aws.fetchEBSVolumes"

	var records []entity.ResourceRecord
	err := r.call(ctx, op, func(ctx context.Context) error {
		records = records[:0]
		paginator := ec2.NewDescribeVolumesPaginator(r.ec2Client, &ec2.DescribeVolumesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, volume := range page.Volumes {
				record := entity.ResourceRecord{
					ResourceID:   aws.ToString(volume.VolumeId),
					ResourceType: entity.ResourceTypeEBSVolume,
					State:        string(volume.State),
					Metadata: entity.ResourceMetadata{
						SizeGB:     int(aws.ToInt32(volume.Size)),
						VolumeType: string(volume.VolumeType),
					},
				}
				if len(volume.Attachments) > 0 {
					record.Metadata.AttachedTo = aws.ToString(volume.Attachments[0].InstanceId)
				}
				if volume.CreateTime != nil {
					record.Metadata.LaunchTime = *volume.CreateTime
				}
				records = append(records, record)
			}
		}
		return nil
	})
	return records, err
}

func (r *UsageRepositoryImpl) fetchElasticIPs(ctx context.Context) ([]entity.ResourceRecord, error) {
	const op = "aws.fetchElasticIPs"

	var records []entity.ResourceRecord
	err := r.call(ctx, op, func(ctx context.Context) error {
		records = records[:0]
		out, err := r.ec2Client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
		if err != nil {
			return err
		}
		for _, address := range out.Addresses {
			state := "associated"
			if address.AssociationId == nil {
				state = "unassociated"
			}
			records = append(records, entity.ResourceRecord{
				ResourceID:   aws.ToString(address.PublicIp),
				ResourceType: entity.ResourceTypeElasticIP,
				State:        state,
				Metadata: entity.ResourceMetadata{
					AttachedTo: aws.ToString(address.InstanceId),
				},
			})
		}
		return nil
	})
	return records, err
}

func (r *UsageRepositoryImpl) fetchRDSInstances(ctx context.Context) ([]entity.ResourceRecord, error) {
	const op = "aws.fetchRDSInstances"

	var records []entity.ResourceRecord
	err := r.call(ctx, op, func(ctx context.Context) error {
		records = records[:0]
		paginator := rds.NewDescribeDBInstancesPaginator(r.rdsClient, &rds.DescribeDBInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, db := range page.DBInstances {
				record := entity.ResourceRecord{
					ResourceID:   aws.ToString(db.DBInstanceIdentifier),
					ResourceType: entity.ResourceTypeRDSInstance,
					State:        aws.ToString(db.DBInstanceStatus),
					Metadata: entity.ResourceMetadata{
						InstanceClass: aws.ToString(db.DBInstanceClass),
						Engine:        aws.ToString(db.Engine),
					},
				}
				if db.InstanceCreateTime != nil {
					record.Metadata.LaunchTime = *db.InstanceCreateTime
				}
				records = append(records, record)
			}
		}
		return nil
	})
	return records, err
}

func parseAmount(s *string) float64 {
	if s == nil {
		return 0
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return 0
	}
	return v
}
