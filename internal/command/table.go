// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/imagebuilder"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
)

// Table returns the operation ID to Command mapping. IDs match catalog
// descriptor IDs. A new map is returned on every call.
func Table() map[string]Command {
	cw, e2, ib, db := awsclient.CloudWatch, awsclient.EC2, awsclient.ImageBuilder, awsclient.RDS

	return map[string]Command{
		"cloudwatch.DeleteAlarms":         Bind(cw, (*cloudwatch.Client).DeleteAlarms),
		"cloudwatch.DeleteDashboards":     Bind(cw, (*cloudwatch.Client).DeleteDashboards),
		"cloudwatch.DescribeAlarmHistory": Bind(cw, (*cloudwatch.Client).DescribeAlarmHistory),
		"cloudwatch.DescribeAlarms":       Bind(cw, (*cloudwatch.Client).DescribeAlarms),
		"cloudwatch.DisableAlarmActions":  Bind(cw, (*cloudwatch.Client).DisableAlarmActions),
		"cloudwatch.EnableAlarmActions":   Bind(cw, (*cloudwatch.Client).EnableAlarmActions),
		"cloudwatch.GetDashboard":         Bind(cw, (*cloudwatch.Client).GetDashboard),
		"cloudwatch.GetMetricStatistics":  Bind(cw, (*cloudwatch.Client).GetMetricStatistics),
		"cloudwatch.ListDashboards":       Bind(cw, (*cloudwatch.Client).ListDashboards),
		"cloudwatch.ListMetrics":          Bind(cw, (*cloudwatch.Client).ListMetrics),
		"cloudwatch.ListTagsForResource":  Bind(cw, (*cloudwatch.Client).ListTagsForResource),
		"cloudwatch.PutDashboard":         Bind(cw, (*cloudwatch.Client).PutDashboard),
		"cloudwatch.PutMetricAlarm":       Bind(cw, (*cloudwatch.Client).PutMetricAlarm),
		"cloudwatch.PutMetricData":        Bind(cw, (*cloudwatch.Client).PutMetricData),
		"cloudwatch.SetAlarmState":        Bind(cw, (*cloudwatch.Client).SetAlarmState),
		"cloudwatch.TagResource":          Bind(cw, (*cloudwatch.Client).TagResource),
		"cloudwatch.UntagResource":        Bind(cw, (*cloudwatch.Client).UntagResource),

		"ec2.CopyImage":              Bind(e2, (*ec2.Client).CopyImage),
		"ec2.CreateImage":            Bind(e2, (*ec2.Client).CreateImage),
		"ec2.CreateTags":             Bind(e2, (*ec2.Client).CreateTags),
		"ec2.DeleteTags":             Bind(e2, (*ec2.Client).DeleteTags),
		"ec2.DeregisterImage":        Bind(e2, (*ec2.Client).DeregisterImage),
		"ec2.DescribeImages":         Bind(e2, (*ec2.Client).DescribeImages),
		"ec2.DescribeInstanceStatus": Bind(e2, (*ec2.Client).DescribeInstanceStatus),
		"ec2.DescribeInstances":      Bind(e2, (*ec2.Client).DescribeInstances),
		"ec2.DescribeRegions":        Bind(e2, (*ec2.Client).DescribeRegions),
		"ec2.DescribeSecurityGroups": Bind(e2, (*ec2.Client).DescribeSecurityGroups),
		"ec2.DescribeSubnets":        Bind(e2, (*ec2.Client).DescribeSubnets),
		"ec2.DescribeVpcs":           Bind(e2, (*ec2.Client).DescribeVpcs),
		"ec2.RebootInstances":        Bind(e2, (*ec2.Client).RebootInstances),
		"ec2.StartInstances":         Bind(e2, (*ec2.Client).StartInstances),
		"ec2.StopInstances":          Bind(e2, (*ec2.Client).StopInstances),
		"ec2.TerminateInstances":     Bind(e2, (*ec2.Client).TerminateInstances),

		"imagebuilder.CancelImageCreation":         Bind(ib, (*imagebuilder.Client).CancelImageCreation),
		"imagebuilder.DeleteImage":                 Bind(ib, (*imagebuilder.Client).DeleteImage),
		"imagebuilder.GetComponent":                Bind(ib, (*imagebuilder.Client).GetComponent),
		"imagebuilder.GetImage":                    Bind(ib, (*imagebuilder.Client).GetImage),
		"imagebuilder.GetImagePipeline":            Bind(ib, (*imagebuilder.Client).GetImagePipeline),
		"imagebuilder.ListComponents":              Bind(ib, (*imagebuilder.Client).ListComponents),
		"imagebuilder.ListImagePipelineImages":     Bind(ib, (*imagebuilder.Client).ListImagePipelineImages),
		"imagebuilder.ListImagePipelines":          Bind(ib, (*imagebuilder.Client).ListImagePipelines),
		"imagebuilder.ListImages":                  Bind(ib, (*imagebuilder.Client).ListImages),
		"imagebuilder.StartImagePipelineExecution": Bind(ib, (*imagebuilder.Client).StartImagePipelineExecution),

		"rds.AddTagsToResource":      Bind(db, (*rds.Client).AddTagsToResource),
		"rds.CreateDBSnapshot":       Bind(db, (*rds.Client).CreateDBSnapshot),
		"rds.DeleteDBSnapshot":       Bind(db, (*rds.Client).DeleteDBSnapshot),
		"rds.DescribeDBClusters":     Bind(db, (*rds.Client).DescribeDBClusters),
		"rds.DescribeDBInstances":    Bind(db, (*rds.Client).DescribeDBInstances),
		"rds.DescribeDBSnapshots":    Bind(db, (*rds.Client).DescribeDBSnapshots),
		"rds.ListTagsForResource":    Bind(db, (*rds.Client).ListTagsForResource),
		"rds.RebootDBInstance":       Bind(db, (*rds.Client).RebootDBInstance),
		"rds.RemoveTagsFromResource": Bind(db, (*rds.Client).RemoveTagsFromResource),
		"rds.StartDBCluster":         Bind(db, (*rds.Client).StartDBCluster),
		"rds.StartDBInstance":        Bind(db, (*rds.Client).StartDBInstance),
		"rds.StopDBCluster":          Bind(db, (*rds.Client).StopDBCluster),
		"rds.StopDBInstance":         Bind(db, (*rds.Client).StopDBInstance),

		"sts.GetCallerIdentity": Bind(awsclient.STS, (*sts.Client).GetCallerIdentity),
	}
}
